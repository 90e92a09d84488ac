package browse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
	"github.com/dulegil/region-service/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock gateway ---

type mockGateway struct {
	avail    content.Availability
	availErr error
}

func (m *mockGateway) Availability(_ context.Context) (content.Availability, error) {
	return m.avail, m.availErr
}

func (m *mockGateway) TrailsFor(_ context.Context, _, _ region.Code) ([]content.Trail, error) {
	return nil, nil
}

func gangwonOnly() content.Availability {
	return content.Availability{
		Provinces: map[region.Code]bool{"gangwon": true},
		Cities: map[region.Code]map[region.Code]bool{
			"gangwon": {"chuncheon": true, "wonju": true},
		},
	}
}

func newMachine(gw content.Gateway) *Machine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMachine(gw, logger, observability.NewMetricsForTesting())
}

// --- tests ---

func TestMachine_StartsInKoreaView(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})

	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())
}

func TestSelectProvince_ThenCity(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})
	ctx := context.Background()

	changed, err := m.SelectProvince(ctx, "gangwon")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, Selection{Mode: ModeProvince, Province: "gangwon"}, m.Selection())

	changed, err = m.SelectCity(ctx, "chuncheon")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, Selection{Mode: ModeTrails, Province: "gangwon", City: "chuncheon"}, m.Selection())
}

func TestSelectProvince_RejectedWithoutContent(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})

	changed, err := m.SelectProvince(context.Background(), "jeju")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())
}

func TestSelectCity_FromKoreaIsNoop(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})

	changed, err := m.SelectCity(context.Background(), "chuncheon")
	require.NoError(t, err)
	assert.False(t, changed, "city selection must not skip the province view")
	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())
}

func TestSelectCity_RevalidatesAvailability(t *testing.T) {
	gw := &mockGateway{avail: gangwonOnly()}
	m := newMachine(gw)
	ctx := context.Background()

	_, err := m.SelectProvince(ctx, "gangwon")
	require.NoError(t, err)

	// Content for Chuncheon retracted between the views being rendered and
	// the user tapping the button.
	gw.avail = content.Availability{
		Provinces: map[region.Code]bool{"gangwon": true},
		Cities:    map[region.Code]map[region.Code]bool{"gangwon": {"wonju": true}},
	}

	changed, err := m.SelectCity(ctx, "chuncheon")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, ModeProvince, m.Selection().Mode)
}

func TestSelect_GatewayErrorLeavesStateUnchanged(t *testing.T) {
	gw := &mockGateway{availErr: fmt.Errorf("availability: %w", content.ErrUnavailable)}
	m := newMachine(gw)

	changed, err := m.SelectProvince(context.Background(), "gangwon")
	assert.ErrorIs(t, err, content.ErrUnavailable)
	assert.False(t, changed)
	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())
}

func TestBack_WalksUpOneLevelAtATime(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})
	ctx := context.Background()

	_, err := m.SelectProvince(ctx, "gangwon")
	require.NoError(t, err)
	_, err = m.SelectCity(ctx, "wonju")
	require.NoError(t, err)

	assert.True(t, m.Back())
	assert.Equal(t, Selection{Mode: ModeProvince, Province: "gangwon"}, m.Selection())

	assert.True(t, m.Back())
	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())

	assert.False(t, m.Back(), "back from the Korea view is a no-op")
	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())
}

func TestBack_ThenReselectIsIdempotent(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})
	ctx := context.Background()

	_, err := m.SelectProvince(ctx, "gangwon")
	require.NoError(t, err)
	_, err = m.SelectCity(ctx, "wonju")
	require.NoError(t, err)
	before := m.Selection()

	m.Back()
	_, err = m.SelectCity(ctx, "wonju")
	require.NoError(t, err)

	assert.Equal(t, before, m.Selection())
}

func TestApply_ResolvedJumpsToTrails(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})

	m.Apply(resolve.Outcome{
		Kind:   resolve.KindResolved,
		Region: &region.Info{Province: "gangwon", City: "chuncheon"},
	})

	sel := m.Selection()
	assert.Equal(t, ModeTrails, sel.Mode)
	assert.Equal(t, region.Code("gangwon"), sel.Province)
	assert.Equal(t, region.Code("chuncheon"), sel.City)
}

func TestApply_RelaxedJumpsToProvinceWithAdvisory(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})

	m.Apply(resolve.Outcome{
		Kind:   resolve.KindRelaxedToProvince,
		Region: &region.Info{Province: "gangwon", City: "chuncheon"},
		Cities: []region.Code{"wonju"},
	})

	sel := m.Selection()
	assert.Equal(t, ModeProvince, sel.Mode)
	assert.Equal(t, region.Code("gangwon"), sel.Province)
	assert.Empty(t, sel.City)
	assert.Equal(t, []region.Code{"wonju"}, m.Advisory())
}

func TestApply_FailureOutcomesStayInKorea(t *testing.T) {
	for _, kind := range []resolve.Kind{
		resolve.KindOutOfTerritory,
		resolve.KindNoContentNearby,
		resolve.KindGatewayUnavailable,
	} {
		m := newMachine(&mockGateway{avail: gangwonOnly()})
		m.Apply(resolve.Outcome{Kind: kind})

		assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection(), "outcome %s", kind)
		assert.Empty(t, m.Advisory())
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	m := newMachine(&mockGateway{avail: gangwonOnly()})
	ctx := context.Background()

	_, err := m.SelectProvince(ctx, "gangwon")
	require.NoError(t, err)
	_, err = m.SelectCity(ctx, "chuncheon")
	require.NoError(t, err)

	m.Reset()
	assert.Equal(t, Selection{Mode: ModeKorea}, m.Selection())
}
