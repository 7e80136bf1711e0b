package types

import "time"

// Snapshot is an immutable point-in-time capture of the dashboard metrics,
// one row per calendar date. Re-saving the same date replaces the prior row.
type Snapshot struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp          time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
	UploadDate         string    `gorm:"column:upload_date;uniqueIndex;not null" json:"upload_date"`
	TotalCustomers     int       `gorm:"column:total_customers" json:"total_customers"`
	ActiveCustomers    int       `gorm:"column:active_customers" json:"active_customers"`
	InactiveCustomers  int       `gorm:"column:inactive_customers" json:"inactive_customers"`
	TotalRevenue       int       `gorm:"column:total_revenue" json:"total_revenue"`
	AvgRevenue         float64   `gorm:"column:avg_revenue_per_customer" json:"avg_revenue_per_customer"`
	TotalPackages      int       `gorm:"column:total_packages" json:"total_packages"`
	QualityIssuesCount int       `gorm:"column:quality_issues_count" json:"quality_issues_count"`
	MissingKTPCount    int       `gorm:"column:missing_ktp_count" json:"missing_ktp_count"`
	InvalidPhoneCount  int       `gorm:"column:invalid_phone_count" json:"invalid_phone_count"`
	MissingCoordsCount int       `gorm:"column:missing_coords_count" json:"missing_coords_count"`
	TopPackage         string    `gorm:"column:top_package" json:"top_package"`
	TopPackageCount    int       `gorm:"column:top_package_count" json:"top_package_count"`
	TopLocation        string    `gorm:"column:top_location" json:"top_location"`
	TopLocationRevenue int       `gorm:"column:top_location_revenue" json:"top_location_revenue"`
	ActiveSalesCount   int       `gorm:"column:active_sales_count" json:"active_sales_count"`
	TotalPSBCount      int       `gorm:"column:total_psb_count" json:"total_psb_count"`
	RawData            string    `gorm:"column:raw_data" json:"raw_data,omitempty"`
}

func (Snapshot) TableName() string { return "snapshots" }

// SalesSnapshot is the per-salesperson breakdown attached to a Snapshot.
type SalesSnapshot struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SnapshotID    uint    `gorm:"column:snapshot_id;not null;index" json:"snapshot_id"`
	SalesName     string  `gorm:"column:sales_name;not null" json:"sales_name"`
	CustomerCount int     `gorm:"column:customer_count" json:"customer_count"`
	Revenue       int     `gorm:"column:revenue" json:"revenue"`
	AvgRevenue    float64 `gorm:"column:avg_revenue" json:"avg_revenue"`
}

func (SalesSnapshot) TableName() string { return "sales_snapshots" }

// PackageSnapshot is the per-package breakdown attached to a Snapshot.
type PackageSnapshot struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SnapshotID    uint    `gorm:"column:snapshot_id;not null;index" json:"snapshot_id"`
	PackageName   string  `gorm:"column:package_name;not null" json:"package_name"`
	CustomerCount int     `gorm:"column:customer_count" json:"customer_count"`
	Revenue       int     `gorm:"column:revenue" json:"revenue"`
	AvgRevenue    float64 `gorm:"column:avg_revenue" json:"avg_revenue"`
}

func (PackageSnapshot) TableName() string { return "package_snapshots" }
