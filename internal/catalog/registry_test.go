package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
network_advice:
  WiFi: "check the router"
unavailable_advice: "nothing to say"
products:
  rules:
    - name: phones
      keywords: [Phone]
      items: [A1, B2]
  default: [Generic]
sentiment:
  positive: [Good, " nice "]
  negative: [bad]
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultCatalog(t *testing.T) {
	r := Default()
	snap := r.Snapshot()
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, "embedded", snap.Source)

	assert.Contains(t, r.NetworkAdvice("wifi"), "strong and unique password")
	assert.Contains(t, r.NetworkAdvice("ESIM"), "eSIM profiles")
	assert.Equal(t, "AI analysis unavailable. Please try again later.", r.NetworkAdvice("unknown"))

	assert.Equal(t, []string{"iPhone 15 Pro", "Samsung Galaxy S23", "Google Pixel 7", "Xiaomi Redmi Note 12"},
		r.Recommend("Je cherche un nouveau Smartphone"))
	assert.Equal(t, "MacBook Air M2", r.Recommend("a light laptop for travel")[0])
	assert.Equal(t, "Canon EOS R6", r.Recommend("photo gear")[0])
	assert.Len(t, r.Recommend("something for the kitchen"), 5)

	pos, neg := r.Lexicon()
	assert.Contains(t, pos, "génial")
	assert.Contains(t, neg, "problème")
}

func TestRegistryFromFile(t *testing.T) {
	r, err := NewRegistry(writeCatalog(t, testCatalog))
	require.NoError(t, err)

	assert.Equal(t, "check the router", r.NetworkAdvice("wifi"))
	assert.Equal(t, "nothing to say", r.NetworkAdvice("lte"))
	assert.Equal(t, []string{"A1", "B2"}, r.Recommend("my PHONE broke"))
	assert.Equal(t, []string{"Generic"}, r.Recommend("shoes"))

	pos, _ := r.Lexicon()
	assert.Contains(t, pos, "good")
	assert.Contains(t, pos, "nice")
}

func TestRegistryIgnoresExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.conf")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	r, err := NewRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "check the router", r.NetworkAdvice("wifi"))
	assert.Equal(t, "catalog.conf", r.Snapshot().Source)
}

func TestRecommendReturnsCopy(t *testing.T) {
	r, err := NewRegistry(writeCatalog(t, testCatalog))
	require.NoError(t, err)
	items := r.Recommend("phone")
	items[0] = "mutated"
	assert.Equal(t, "A1", r.Recommend("phone")[0])
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(testCatalog + "\nextra: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse catalog failed")
}

func TestParseValidation(t *testing.T) {
	_, err := Parse([]byte(`unavailable_advice: "x"`))
	assert.ErrorContains(t, err, "products.default")

	_, err = Parse([]byte(`products: {default: [a]}`))
	assert.ErrorContains(t, err, "unavailable_advice")

	_, err = Parse([]byte(`
unavailable_advice: x
products:
  default: [a]
  rules:
    - name: empty
      keywords: []
      items: [b]
`))
	assert.ErrorContains(t, err, "products.rules[0]")
}

func TestNewRegistryMissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRegistryHotReload(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	changed := make(chan Snapshot, 4)
	r.OnChange(func(s Snapshot) { changed <- s })

	updated := `
unavailable_advice: "still nothing"
products:
  default: [Other]
`
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(updated), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case snap := <-changed:
		assert.Greater(t, snap.Version, int64(1))
	case <-time.After(5 * time.Second):
		t.Fatal("catalog reload not observed")
	}
	assert.Eventually(t, func() bool {
		recs := r.Recommend("anything")
		return len(recs) == 1 && recs[0] == "Other"
	}, 5*time.Second, 50*time.Millisecond)
}
