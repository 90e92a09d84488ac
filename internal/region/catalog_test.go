package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_EveryCityBelongsToExactlyOneProvince(t *testing.T) {
	seen := make(map[Code]Code) // city → province
	for _, e := range All() {
		if prev, ok := seen[e.City]; ok {
			t.Fatalf("city %q appears under both %q and %q", e.City, prev, e.Province)
		}
		seen[e.City] = e.Province
	}
}

func TestCatalog_ProvinceAndCityCodesDisjoint(t *testing.T) {
	provinces := make(map[Code]bool, len(Provinces()))
	for _, p := range Provinces() {
		provinces[p] = true
	}
	for _, e := range All() {
		assert.False(t, provinces[e.City], "city code %q collides with a province code", e.City)
	}
}

func TestCatalog_AllCentroidsInsideKoreaBounds(t *testing.T) {
	for _, e := range All() {
		assert.True(t, KoreaBounds.Contains(e.Centroid),
			"centroid of %s/%s outside territory bounds", e.Province, e.City)
	}
}

func TestCatalog_ForProvincePartitionsAll(t *testing.T) {
	total := 0
	for _, p := range Provinces() {
		entries := ForProvince(p)
		require.NotEmpty(t, entries, "province %q has no cities", p)
		for _, e := range entries {
			assert.Equal(t, p, e.Province)
		}
		total += len(entries)
	}
	assert.Equal(t, len(All()), total)
}

func TestCatalog_ForProvinceUnknownCode(t *testing.T) {
	assert.Nil(t, ForProvince("atlantis"))
}

func TestNames_KnownCodes(t *testing.T) {
	assert.Equal(t, "강원특별자치도", ProvinceName("gangwon"))
	assert.Equal(t, "춘천시", CityName("chuncheon"))
	assert.Equal(t, "제주특별자치도", ProvinceName("jeju"))
	assert.Equal(t, "서귀포시", CityName("seogwipo"))
}

func TestNames_UnknownCodesFallBackToCode(t *testing.T) {
	assert.Equal(t, "atlantis", ProvinceName("atlantis"))
	assert.Equal(t, "el-dorado", CityName("el-dorado"))
}
