package vendormatch

import (
	"errors"
	"math"

	"github.com/google/uuid"

	"muhasebe-backend/internal/models"
)

// FuzzyThreshold is the minimum matching-block ratio for a fuzzy match.
const FuzzyThreshold = 0.7

// ErrDuplicateName is returned by Catalog.Create when another vendor with
// the same normalized name already exists for the user. GetOrCreate treats
// it as a lost race and retries resolution.
var ErrDuplicateName = errors.New("vendor with this normalized name already exists")

// Catalog is the vendor lookup surface supplied by persistence. Lookups
// return (nil, nil) when nothing matches.
type Catalog interface {
	FindByVKN(userID uuid.UUID, vkn string) (*models.Vendor, error)
	FindByTCKN(userID uuid.UUID, tckn string) (*models.Vendor, error)
	FindByNormalizedName(userID uuid.UUID, name string) (*models.Vendor, error)
	FindByAlias(userID uuid.UUID, normalized string) (*models.Vendor, error)
	ListAll(userID uuid.UUID) ([]models.Vendor, error)
	GetByID(id uuid.UUID) (*models.Vendor, error)
	Create(vendor *models.Vendor) error
	AddAlias(alias *models.VendorAlias) error
}

type MatchKind string

const (
	MatchTaxID     MatchKind = "tax_id"
	MatchExactName MatchKind = "exact_name"
	MatchAlias     MatchKind = "alias"
	MatchFuzzy     MatchKind = "fuzzy"
	MatchNone      MatchKind = "none"
)

// Match is the outcome of a resolution attempt. IsNew is true exactly when
// VendorID is nil.
type Match struct {
	VendorID   *uuid.UUID `json:"vendor_id,omitempty"`
	VendorName string     `json:"vendor_name,omitempty"`
	Kind       MatchKind  `json:"match_kind"`
	Similarity float64    `json:"similarity"`
	IsNew      bool       `json:"is_new"`
}

func matched(v *models.Vendor, kind MatchKind, similarity float64) Match {
	id := v.ID
	return Match{
		VendorID:   &id,
		VendorName: v.DisplayName,
		Kind:       kind,
		Similarity: similarity,
	}
}

// Matcher resolves OCR vendor-name guesses and tax IDs against a user's
// catalog. Resolution is read-only; GetOrCreate is the only mutating entry
// point.
type Matcher struct {
	catalog Catalog
}

func NewMatcher(catalog Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Resolve finds the best match for the given signals. Tiers are tried in
// order and the first hit wins: VKN, TCKN, exact normalized name, alias,
// fuzzy. Without a name guess, resolution stops after the tax-ID tiers.
func (m *Matcher) Resolve(userID uuid.UUID, nameGuess, vkn, tckn string) (Match, error) {
	if vkn != "" {
		vendor, err := m.catalog.FindByVKN(userID, vkn)
		if err != nil {
			return Match{}, err
		}
		if vendor != nil {
			return matched(vendor, MatchTaxID, 1.0), nil
		}
	}

	if tckn != "" {
		vendor, err := m.catalog.FindByTCKN(userID, tckn)
		if err != nil {
			return Match{}, err
		}
		if vendor != nil {
			return matched(vendor, MatchTaxID, 1.0), nil
		}
	}

	if nameGuess == "" {
		return Match{Kind: MatchNone, IsNew: true}, nil
	}

	normalized := NormalizeName(nameGuess)

	vendor, err := m.catalog.FindByNormalizedName(userID, normalized)
	if err != nil {
		return Match{}, err
	}
	if vendor != nil {
		return matched(vendor, MatchExactName, 0.95), nil
	}

	vendor, err = m.catalog.FindByAlias(userID, normalized)
	if err != nil {
		return Match{}, err
	}
	if vendor != nil {
		return matched(vendor, MatchAlias, 0.90), nil
	}

	vendors, err := m.catalog.ListAll(userID)
	if err != nil {
		return Match{}, err
	}

	var best *models.Vendor
	bestScore := 0.0
	for i := range vendors {
		score := Similarity(normalized, vendors[i].NormalizedName)
		if score > bestScore {
			bestScore = score
			best = &vendors[i]
		}
		for _, alias := range vendors[i].Aliases {
			if score := Similarity(normalized, alias.NormalizedAlias); score > bestScore {
				bestScore = score
				best = &vendors[i]
			}
		}
	}

	if best != nil && bestScore >= FuzzyThreshold {
		return matched(best, MatchFuzzy, math.Round(bestScore*100)/100), nil
	}

	return Match{VendorName: nameGuess, Kind: MatchNone, IsNew: true}, nil
}

// GetOrCreate resolves the vendor and creates it when nothing matches. On a
// match it may learn the observed OCR spelling as a new alias; alias
// learning is additive only. A concurrent create of the same vendor is
// detected via ErrDuplicateName and resolved again instead of duplicated.
func (m *Matcher) GetOrCreate(userID uuid.UUID, displayName, vkn, tckn, observedName string) (*models.Vendor, error) {
	match, err := m.Resolve(userID, displayName, vkn, tckn)
	if err != nil {
		return nil, err
	}

	if !match.IsNew && match.VendorID != nil {
		vendor, err := m.catalog.GetByID(*match.VendorID)
		if err != nil {
			return nil, err
		}
		if observedName != "" {
			if err := m.learnAlias(vendor, observedName); err != nil {
				return nil, err
			}
		}
		return vendor, nil
	}

	vendor := &models.Vendor{
		ID:             uuid.New(),
		UserID:         userID,
		DisplayName:    displayName,
		NormalizedName: NormalizeName(displayName),
	}
	if vkn != "" {
		vendor.VKN = &vkn
	}
	if tckn != "" {
		vendor.TCKN = &tckn
	}

	if err := m.catalog.Create(vendor); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			// Lost the race with a concurrent upload; the vendor exists now.
			return m.catalog.FindByNormalizedName(userID, vendor.NormalizedName)
		}
		return nil, err
	}
	return vendor, nil
}

func (m *Matcher) learnAlias(vendor *models.Vendor, observedName string) error {
	normalized := NormalizeName(observedName)
	if normalized == "" || normalized == vendor.NormalizedName {
		return nil
	}
	for _, alias := range vendor.Aliases {
		if alias.NormalizedAlias == normalized {
			return nil
		}
	}
	return m.catalog.AddAlias(&models.VendorAlias{
		ID:              uuid.New(),
		VendorID:        vendor.ID,
		Alias:           observedName,
		NormalizedAlias: normalized,
	})
}
