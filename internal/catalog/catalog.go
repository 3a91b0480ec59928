// Package catalog holds the static pricing and resource-shape reference data.
// A Catalog is immutable once loaded and safe for concurrent reads.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edvin/configurator/internal/model"
)

// ErrUnknownEntry is returned for lookups of ids the catalog does not contain.
var ErrUnknownEntry = errors.New("unknown catalog entry")

//go:embed default.yaml
var defaultCatalog []byte

type Catalog struct {
	Regions          []model.Region          `json:"regions" yaml:"regions"`
	ComputeTemplates []model.ComputeTemplate `json:"compute_templates" yaml:"compute_templates"`
	GPUBundles       []model.GPUBundle       `json:"gpu_bundles" yaml:"gpu_bundles"`
	GPUSliceUnit     model.GPUSliceUnit      `json:"gpu_slice_unit" yaml:"gpu_slice_unit"`
	ReadyPlans       []model.ReadyPlan       `json:"ready_plans" yaml:"ready_plans"`
	Rates            model.AddOnRates        `json:"add_on_rates" yaml:"add_on_rates"`

	regions   map[string]model.Region
	templates map[string]model.ComputeTemplate
	bundles   map[string]model.GPUBundle
	plans     map[string]model.ReadyPlan
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("load default catalog: %w", err)
	}
	return c, nil
}

// Load reads a catalog from a YAML file. An empty path loads the default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	var problems []string

	if len(c.Regions) == 0 {
		problems = append(problems, "at least one region is required")
	}

	c.regions = make(map[string]model.Region, len(c.Regions))
	for _, r := range c.Regions {
		if r.ID == "" {
			problems = append(problems, "region with empty id")
			continue
		}
		if _, dup := c.regions[r.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate region %q", r.ID))
		}
		c.regions[r.ID] = r
	}

	c.templates = make(map[string]model.ComputeTemplate, len(c.ComputeTemplates))
	for _, t := range c.ComputeTemplates {
		if t.ID == "" {
			problems = append(problems, "compute template with empty id")
			continue
		}
		if _, dup := c.templates[t.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate compute template %q", t.ID))
		}
		if t.MonthlyPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("compute template %q has a negative price", t.ID))
		}
		c.templates[t.ID] = t
	}

	c.bundles = make(map[string]model.GPUBundle, len(c.GPUBundles))
	for _, b := range c.GPUBundles {
		if b.ID == "" {
			problems = append(problems, "gpu bundle with empty id")
			continue
		}
		if _, dup := c.bundles[b.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate gpu bundle %q", b.ID))
		}
		if b.MonthlyPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("gpu bundle %q has a negative price", b.ID))
		}
		c.bundles[b.ID] = b
	}

	c.plans = make(map[string]model.ReadyPlan, len(c.ReadyPlans))
	for _, p := range c.ReadyPlans {
		if p.ID == "" {
			problems = append(problems, "ready plan with empty id")
			continue
		}
		if _, dup := c.plans[p.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate ready plan %q", p.ID))
		}
		if p.MonthlyPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("ready plan %q has a negative price", p.ID))
		}
		c.plans[p.ID] = p
	}

	if len(c.GPUSliceUnit.SlicesAllowed) == 0 {
		problems = append(problems, "gpu slice unit declares no allowed slice counts")
	}
	for _, n := range c.GPUSliceUnit.SlicesAllowed {
		if n <= 0 {
			problems = append(problems, fmt.Sprintf("gpu slice count %d must be positive", n))
		}
	}
	if c.GPUSliceUnit.PricePerSlicePerMonth.IsNegative() {
		problems = append(problems, "gpu slice price is negative")
	}

	rates := map[string]model.Money{
		"static_ip_monthly":          c.Rates.StaticIPMonthly,
		"object_storage_gb_monthly":  c.Rates.ObjectStorageGBMonthly,
		"advanced_backup_gb_monthly": c.Rates.AdvancedBackupGBMonthly,
		"flash_disk_ssd_gb_monthly":  c.Rates.FlashDiskSSDGBMonthly,
		"flash_disk_nvme_gb_monthly": c.Rates.FlashDiskNVMeGBMonthly,
		"cpu_core_monthly":           c.Rates.CPUCoreMonthly,
		"ram_gb_monthly":             c.Rates.RAMGBMonthly,
		"flash_gb_monthly":           c.Rates.FlashGBMonthly,
	}
	for name, v := range rates {
		if v.IsNegative() {
			problems = append(problems, fmt.Sprintf("add-on rate %s is negative", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Catalog) Region(id string) (model.Region, error) {
	r, ok := c.regions[id]
	if !ok {
		return model.Region{}, fmt.Errorf("region %q: %w", id, ErrUnknownEntry)
	}
	return r, nil
}

func (c *Catalog) ComputeTemplate(id string) (model.ComputeTemplate, error) {
	t, ok := c.templates[id]
	if !ok {
		return model.ComputeTemplate{}, fmt.Errorf("compute template %q: %w", id, ErrUnknownEntry)
	}
	return t, nil
}

func (c *Catalog) GPUBundle(id string) (model.GPUBundle, error) {
	b, ok := c.bundles[id]
	if !ok {
		return model.GPUBundle{}, fmt.Errorf("gpu bundle %q: %w", id, ErrUnknownEntry)
	}
	return b, nil
}

func (c *Catalog) ReadyPlan(id string) (model.ReadyPlan, error) {
	p, ok := c.plans[id]
	if !ok {
		return model.ReadyPlan{}, fmt.Errorf("ready plan %q: %w", id, ErrUnknownEntry)
	}
	return p, nil
}
