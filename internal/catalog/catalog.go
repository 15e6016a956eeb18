// Package catalog holds the immutable list of physical stores the locator ranks.
//
// The catalog is fixed at process start: either the built-in Philadelphia
// stores or a YAML file loaded once through koanf. Callers only ever receive
// copies, so the catalog cannot be mutated at runtime.
package catalog

import (
	"strings"

	"store-locator-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Catalog struct {
	stores []domain.Store
}

// New builds a catalog from a copy of stores.
func New(stores []domain.Store) *Catalog {
	cp := make([]domain.Store, len(stores))
	copy(cp, stores)
	return &Catalog{stores: cp}
}

// Stores returns a copy of the catalog in its configured order.
func (c *Catalog) Stores() []domain.Store {
	cp := make([]domain.Store, len(c.stores))
	copy(cp, c.stores)
	return cp
}

func (c *Catalog) Len() int { return len(c.stores) }

// Default returns the built-in store catalog.
func Default() *Catalog {
	return New(defaultStores)
}

type storeRecord struct {
	Name    string  `yaml:"name" validate:"required"`
	Slug    string  `yaml:"slug" validate:"required"`
	Address string  `yaml:"address" validate:"required"`
	City    string  `yaml:"city" validate:"required"`
	State   string  `yaml:"state" validate:"required,len=2"`
	Zip     string  `yaml:"zip" validate:"len=5,number"`
	Lat     float64 `yaml:"lat" validate:"min=-90,max=90"`
	Lng     float64 `yaml:"lng" validate:"min=-180,max=180"`
}

// LoadFile reads a YAML catalog of the form:
//
//	stores:
//	  - name: Fishtown
//	    slug: fishtown
//	    ...
func LoadFile(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read catalog %s failed", path)
	}

	var records []storeRecord
	if err := k.UnmarshalWithConf("stores", &records, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal catalog %s failed", path)
	}

	if len(records) == 0 {
		return nil, errors.Errorf("catalog %s contains no stores", path)
	}

	validate := validator.New()
	seen := make(map[string]struct{}, len(records))
	stores := make([]domain.Store, 0, len(records))
	for i, r := range records {
		r.Slug = strings.TrimSpace(r.Slug)
		if err := validate.Struct(r); err != nil {
			return nil, errors.Wrapf(err, "catalog %s: store #%d", path, i+1)
		}

		if _, ok := seen[r.Slug]; ok {
			return nil, errors.Errorf("catalog %s: duplicate slug %q", path, r.Slug)
		}
		seen[r.Slug] = struct{}{}

		stores = append(stores, domain.Store{
			Name:    r.Name,
			Slug:    r.Slug,
			Address: r.Address,
			City:    r.City,
			State:   r.State,
			Zip:     r.Zip,
			Lat:     r.Lat,
			Lng:     r.Lng,
		})
	}

	return &Catalog{stores: stores}, nil
}
