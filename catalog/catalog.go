package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/verdant-app/verdant-server/models"
)

const (
	DefaultWikidataBase    = "https://www.wikidata.org/w/api.php"
	DefaultINaturalistBase = "https://api.inaturalist.org/v1"

	// Both APIs ask clients to identify themselves.
	userAgent = "VerdantCatalogBot/1.0 (https://verdant.app)"
)

// Label languages requested from Wikidata besides English.
var labelLanguages = []string{"en", "hi", "bn", "ta", "te", "mr", "gu", "kn", "ml", "pa"}

type (
	SaveFunc   func(ctx context.Context, info *models.PlantInfo) error
	ExistsFunc func(ctx context.Context, commonName string) (bool, error)
)

// Ingester builds plant catalog entries from the public Wikidata and
// iNaturalist JSON APIs and hands them to Save. Exists lets a run skip
// plants already cataloged.
type Ingester struct {
	HTTP            *http.Client
	WikidataBase    string
	INaturalistBase string
	Delay           time.Duration
	Save            SaveFunc
	Exists          ExistsFunc
}

// Ingest processes each common name in order, pausing Delay between
// plants to stay polite to the public APIs. A failed lookup skips that
// plant; a failed save stops the run. Returns how many entries were saved.
func (ing *Ingester) Ingest(ctx context.Context, names []string) (int, error) {
	saved := 0
	for i, name := range names {
		if i > 0 && ing.Delay > 0 {
			select {
			case <-ctx.Done():
				return saved, ctx.Err()
			case <-time.After(ing.Delay):
			}
		}
		if ing.Exists != nil {
			known, err := ing.Exists(ctx, name)
			if err != nil {
				return saved, fmt.Errorf("failed to check catalog for %q: %w", name, err)
			}
			if known {
				log.Printf("Skipping %s: already in catalog", name)
				continue
			}
		}
		info, err := ing.Lookup(ctx, name)
		if err != nil {
			log.Printf("Skipping %s: %v", name, err)
			continue
		}
		if err := ing.Save(ctx, info); err != nil {
			return saved, fmt.Errorf("failed to save %q: %w", name, err)
		}
		log.Printf("Cataloged %s (%s)", info.CommonName, info.ScientificName)
		saved++
	}
	return saved, nil
}

// Lookup resolves one common name to a catalog entry: the Wikidata entity
// supplies the scientific name, image and translated labels, iNaturalist
// the taxonomic family. The family lookup is best-effort.
func (ing *Ingester) Lookup(ctx context.Context, commonName string) (*models.PlantInfo, error) {
	entityID, err := ing.searchEntity(ctx, commonName)
	if err != nil {
		return nil, err
	}

	entity, err := ing.getEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	info := &models.PlantInfo{
		CommonName:       commonName,
		ScientificName:   firstStringClaim(entity, "P225"),
		NamesInLanguages: map[string]string{},
		LastUpdated:      time.Now(),
	}
	if file := firstStringClaim(entity, "P18"); file != "" {
		info.DefaultImageURL = commonsFileURL(file)
	}
	for lang, label := range entity.Labels {
		if label.Value != "" {
			info.NamesInLanguages[lang] = label.Value
		}
	}

	query := info.ScientificName
	if query == "" {
		query = commonName
	}
	family, err := ing.familyOf(ctx, query)
	if err != nil {
		log.Printf("Family lookup failed for %s: %v", commonName, err)
	}
	info.Family = family
	info.PlantType = classify(entity.Descriptions["en"].Value, family)
	return info, nil
}

type wdLabel struct {
	Value string `json:"value"`
}

type wdEntity struct {
	Labels       map[string]wdLabel `json:"labels"`
	Descriptions map[string]wdLabel `json:"descriptions"`
	Claims       map[string][]struct {
		Mainsnak struct {
			Datavalue struct {
				Value json.RawMessage `json:"value"`
			} `json:"datavalue"`
		} `json:"mainsnak"`
	} `json:"claims"`
}

// Terms that mark a Wikidata search hit as botanical rather than a
// band, film or place sharing the name.
var plantTerms = []string{
	"plant", "species", "genus", "herb", "tree", "shrub",
	"flower", "grass", "vine", "fruit", "vegetable", "succulent",
}

func (ing *Ingester) searchEntity(ctx context.Context, name string) (string, error) {
	q := url.Values{
		"action":   {"wbsearchentities"},
		"format":   {"json"},
		"language": {"en"},
		"type":     {"item"},
		"limit":    {"10"},
		"search":   {name},
	}
	var resp struct {
		Search []struct {
			ID          string `json:"id"`
			Description string `json:"description"`
		} `json:"search"`
	}
	if err := ing.getJSON(ctx, ing.wikidataBase()+"?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	for _, hit := range resp.Search {
		desc := strings.ToLower(hit.Description)
		for _, term := range plantTerms {
			if strings.Contains(desc, term) {
				return hit.ID, nil
			}
		}
	}
	return "", fmt.Errorf("no plant entity found for %q", name)
}

func (ing *Ingester) getEntity(ctx context.Context, id string) (*wdEntity, error) {
	q := url.Values{
		"action":    {"wbgetentities"},
		"format":    {"json"},
		"ids":       {id},
		"props":     {"claims|labels|descriptions"},
		"languages": {strings.Join(labelLanguages, "|")},
	}
	var resp struct {
		Entities map[string]wdEntity `json:"entities"`
	}
	if err := ing.getJSON(ctx, ing.wikidataBase()+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	entity, ok := resp.Entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s missing from Wikidata response", id)
	}
	return &entity, nil
}

// familyOf finds the taxonomic family via iNaturalist: a taxa search for
// the best match, then its detail record for the ancestor chain.
func (ing *Ingester) familyOf(ctx context.Context, name string) (string, error) {
	q := url.Values{
		"q":        {name},
		"rank":     {"species,genus"},
		"per_page": {"1"},
	}
	var search struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := ing.getJSON(ctx, ing.inatBase()+"/taxa?"+q.Encode(), &search); err != nil {
		return "", err
	}
	if len(search.Results) == 0 {
		return "", nil
	}

	var taxon struct {
		Results []struct {
			Ancestors []struct {
				Rank string `json:"rank"`
				Name string `json:"name"`
			} `json:"ancestors"`
		} `json:"results"`
	}
	if err := ing.getJSON(ctx, fmt.Sprintf("%s/taxa/%d", ing.inatBase(), search.Results[0].ID), &taxon); err != nil {
		return "", err
	}
	if len(taxon.Results) == 0 {
		return "", nil
	}
	for _, ancestor := range taxon.Results[0].Ancestors {
		if ancestor.Rank == "family" {
			return ancestor.Name, nil
		}
	}
	return "", nil
}

// Families with an unambiguous care category.
var familyTypes = map[string]string{
	"Poaceae":       "Grass",
	"Lamiaceae":     "Herb",
	"Cactaceae":     "Succulent",
	"Crassulaceae":  "Succulent",
	"Asphodelaceae": "Succulent",
}

// classify maps the entity description and family onto the care
// categories the app groups plants by.
func classify(description, family string) string {
	if t, ok := familyTypes[family]; ok {
		return t
	}
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "succulent"):
		return "Succulent"
	case strings.Contains(desc, "grass") || strings.Contains(desc, "bamboo"):
		return "Grass"
	case strings.Contains(desc, "tree"):
		return "Tree"
	case strings.Contains(desc, "herb") || strings.Contains(desc, "medicinal") || strings.Contains(desc, "aromatic"):
		return "Herb"
	case strings.Contains(desc, "fruit") || strings.Contains(desc, "vegetable") || strings.Contains(desc, "crop"):
		return "Fruit & Vegetable"
	case strings.Contains(desc, "flower"):
		return "Flowering"
	default:
		return "Ornamental"
	}
}

func commonsFileURL(file string) string {
	escaped := url.PathEscape(strings.ReplaceAll(file, " ", "_"))
	return "https://commons.wikimedia.org/wiki/Special:FilePath/" + escaped + "?width=300"
}

func firstStringClaim(entity *wdEntity, property string) string {
	for _, claim := range entity.Claims[property] {
		var value string
		if err := json.Unmarshal(claim.Mainsnak.Datavalue.Value, &value); err == nil && value != "" {
			return value
		}
	}
	return ""
}

func (ing *Ingester) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	client := ing.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (ing *Ingester) wikidataBase() string {
	if ing.WikidataBase != "" {
		return ing.WikidataBase
	}
	return DefaultWikidataBase
}

func (ing *Ingester) inatBase() string {
	if ing.INaturalistBase != "" {
		return ing.INaturalistBase
	}
	return DefaultINaturalistBase
}
