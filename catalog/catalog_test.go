package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/verdant-app/verdant-server/models"
)

// fakeWikidata answers wbsearchentities and wbgetentities for a single
// known plant, with a same-named band ahead of it in the search results.
func fakeWikidata(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "wbsearchentities":
			if r.URL.Query().Get("search") != "Tomato" {
				fmt.Fprint(w, `{"search": []}`)
				return
			}
			fmt.Fprint(w, `{"search": [
				{"id": "Q999", "description": "American rock band"},
				{"id": "Q23501", "description": "species of edible fruit cultivated worldwide"}
			]}`)
		case "wbgetentities":
			if r.URL.Query().Get("ids") != "Q23501" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, `{"entities": {"Q23501": {
				"labels": {
					"en": {"value": "tomato"},
					"hi": {"value": "टमाटर"}
				},
				"descriptions": {"en": {"value": "species of edible fruit cultivated worldwide"}},
				"claims": {
					"P225": [{"mainsnak": {"datavalue": {"value": "Solanum lycopersicum"}}}],
					"P18":  [{"mainsnak": {"datavalue": {"value": "Tomato je.jpg"}}}]
				}
			}}}`)
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fakeINaturalist(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/taxa" && r.URL.Query().Get("q") == "Solanum lycopersicum":
			fmt.Fprint(w, `{"results": [{"id": 55745, "name": "Solanum lycopersicum"}]}`)
		case r.URL.Path == "/taxa/55745":
			fmt.Fprint(w, `{"results": [{"ancestors": [
				{"rank": "kingdom", "name": "Plantae"},
				{"rank": "family", "name": "Solanaceae"}
			]}]}`)
		default:
			fmt.Fprint(w, `{"results": []}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestIngester(t *testing.T) *Ingester {
	t.Helper()
	return &Ingester{
		WikidataBase:    fakeWikidata(t).URL,
		INaturalistBase: fakeINaturalist(t).URL,
	}
}

func TestLookupBuildsCatalogEntry(t *testing.T) {
	ing := newTestIngester(t)

	info, err := ing.Lookup(context.Background(), "Tomato")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if info.CommonName != "Tomato" {
		t.Errorf("commonName = %q, want Tomato", info.CommonName)
	}
	if info.ScientificName != "Solanum lycopersicum" {
		t.Errorf("scientificName = %q, want Solanum lycopersicum", info.ScientificName)
	}
	if info.Family != "Solanaceae" {
		t.Errorf("family = %q, want Solanaceae", info.Family)
	}
	if info.PlantType != "Fruit & Vegetable" {
		t.Errorf("plantType = %q, want Fruit & Vegetable", info.PlantType)
	}
	if !strings.Contains(info.DefaultImageURL, "Special:FilePath/Tomato_je.jpg") ||
		!strings.Contains(info.DefaultImageURL, "width=300") {
		t.Errorf("defaultImageURL = %q", info.DefaultImageURL)
	}
	if info.NamesInLanguages["hi"] != "टमाटर" {
		t.Errorf("hindi label = %q", info.NamesInLanguages["hi"])
	}
	if info.LastUpdated.IsZero() {
		t.Error("lastUpdated not set")
	}
}

func TestLookupRejectsNonPlantEntities(t *testing.T) {
	ing := newTestIngester(t)
	if _, err := ing.Lookup(context.Background(), "Nirvana"); err == nil {
		t.Fatal("Lookup() succeeded for a name with no botanical entity")
	}
}

func TestIngestSkipsExistingAndFailedLookups(t *testing.T) {
	ing := newTestIngester(t)

	var savedNames []string
	ing.Save = func(_ context.Context, info *models.PlantInfo) error {
		savedNames = append(savedNames, info.CommonName)
		return nil
	}
	ing.Exists = func(_ context.Context, name string) (bool, error) {
		return name == "Rose", nil
	}

	// Rose is already cataloged, Unknownia has no entity; neither stops
	// the run.
	saved, err := ing.Ingest(context.Background(), []string{"Rose", "Unknownia", "Tomato"})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want 1", saved)
	}
	if len(savedNames) != 1 || savedNames[0] != "Tomato" {
		t.Errorf("savedNames = %v, want [Tomato]", savedNames)
	}
}

func TestIngestStopsOnSaveFailure(t *testing.T) {
	ing := newTestIngester(t)
	ing.Save = func(context.Context, *models.PlantInfo) error {
		return fmt.Errorf("write concern error")
	}

	saved, err := ing.Ingest(context.Background(), []string{"Tomato"})
	if err == nil {
		t.Fatal("Ingest() did not surface the save failure")
	}
	if saved != 0 {
		t.Errorf("saved = %d, want 0", saved)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		description string
		family      string
		want        string
	}{
		{"species of succulent plant", "", "Succulent"},
		{"species of plant", "Crassulaceae", "Succulent"},
		{"woody bamboo", "Poaceae", "Grass"},
		{"species of tree", "Meliaceae", "Tree"},
		{"aromatic medicinal plant", "", "Herb"},
		{"species of plant", "Lamiaceae", "Herb"},
		{"species of edible fruit cultivated worldwide", "Solanaceae", "Fruit & Vegetable"},
		{"garden flower", "Rosaceae", "Flowering"},
		{"species of plant", "Araceae", "Ornamental"},
	}
	for _, tt := range tests {
		if got := classify(tt.description, tt.family); got != tt.want {
			t.Errorf("classify(%q, %q) = %q, want %q", tt.description, tt.family, got, tt.want)
		}
	}
}
