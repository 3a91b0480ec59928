package model

type Region struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type ComputeTemplate struct {
	ID           string `json:"id" yaml:"id"`
	CPUCores     int    `json:"cpu_cores" yaml:"cpu_cores"`
	RAMGB        int    `json:"ram_gb" yaml:"ram_gb"`
	BootDiskGB   int    `json:"boot_disk_gb" yaml:"boot_disk_gb"`
	MonthlyPrice Money  `json:"monthly_price" yaml:"monthly_price"`
	Description  string `json:"description" yaml:"description"`
}

// GPUBundle is a fixed GPU allocation sold at a flat monthly price.
type GPUBundle struct {
	ID           string `json:"id" yaml:"id"`
	Label        string `json:"label" yaml:"label"`
	MonthlyPrice Money  `json:"monthly_price" yaml:"monthly_price"`
}

// GPUSliceUnit prices fractional GPU allocations linearly per slice.
type GPUSliceUnit struct {
	SlicesAllowed         []int `json:"slices_allowed" yaml:"slices_allowed"`
	PricePerSlicePerMonth Money `json:"price_per_slice_per_month" yaml:"price_per_slice_per_month"`
}

// Allows reports whether n is one of the declared slice counts.
func (u GPUSliceUnit) Allows(n int) bool {
	for _, s := range u.SlicesAllowed {
		if s == n {
			return true
		}
	}
	return false
}

type ReadyPlan struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	MonthlyPrice Money  `json:"monthly_price" yaml:"monthly_price"`
}

// AddOnRates holds the per-unit monthly prices for add-ons and
// virtual data center sizing.
type AddOnRates struct {
	StaticIPMonthly         Money `json:"static_ip_monthly" yaml:"static_ip_monthly"`
	ObjectStorageGBMonthly  Money `json:"object_storage_gb_monthly" yaml:"object_storage_gb_monthly"`
	AdvancedBackupGBMonthly Money `json:"advanced_backup_gb_monthly" yaml:"advanced_backup_gb_monthly"`
	FlashDiskSSDGBMonthly   Money `json:"flash_disk_ssd_gb_monthly" yaml:"flash_disk_ssd_gb_monthly"`
	FlashDiskNVMeGBMonthly  Money `json:"flash_disk_nvme_gb_monthly" yaml:"flash_disk_nvme_gb_monthly"`
	CPUCoreMonthly          Money `json:"cpu_core_monthly" yaml:"cpu_core_monthly"`
	RAMGBMonthly            Money `json:"ram_gb_monthly" yaml:"ram_gb_monthly"`
	FlashGBMonthly          Money `json:"flash_gb_monthly" yaml:"flash_gb_monthly"`
}
