package types

// Column names as they appear in the billing exports. The business key is
// ColCustomerID; every other column is optional in practice.
const (
	ColNo             = "No"
	ColCustomerID     = "ID Pelanggan"
	ColName           = "Nama Pelanggan"
	ColPhone          = "Tlp"
	ColPackage        = "Nama Langganan"
	ColPrice          = "Harga"
	ColStatus         = "Status Langganan"
	ColLocation       = "Nama Lokasi"
	ColSales          = "Nama Sales"
	ColRegistration   = "Tanggal Registrasi"
	ColLastPayment    = "Pembayaran Terakhir"
	ColDueDay         = "Jatuh Tempo"
	ColIncentive      = "Insentif Sales"
	ColIncentiveMode  = "Metode Insentif"
	ColKTPPhoto       = "Foto KTP"
	ColCoordinate     = "Titik Koordinat Lokasi"
	ColAddress        = "Alamat"
	ColConnectionType = "Jenis Koneksi"
	ColRouter         = "Nama Router"
)

// Subscription status values. Anything else is treated as inactive.
const (
	StatusOn  = "On"
	StatusOff = "Off"
)

// NoPaymentSentinel marks customers that have never paid since registration.
const NoPaymentSentinel = "Data Belum Ada"

// Customer is one row of the canonical dataset. Fields stay as raw export
// strings; derived numeric/temporal values are computed per request and
// never written back.
type Customer struct {
	No             string `json:"No"`
	CustomerID     string `json:"ID Pelanggan"`
	Name           string `json:"Nama Pelanggan"`
	Phone          string `json:"Tlp"`
	Package        string `json:"Nama Langganan"`
	Price          string `json:"Harga"`
	Status         string `json:"Status Langganan"`
	Location       string `json:"Nama Lokasi"`
	Sales          string `json:"Nama Sales"`
	Registration   string `json:"Tanggal Registrasi"`
	LastPayment    string `json:"Pembayaran Terakhir"`
	DueDay         string `json:"Jatuh Tempo"`
	Incentive      string `json:"Insentif Sales"`
	IncentiveMode  string `json:"Metode Insentif"`
	KTPPhoto       string `json:"Foto KTP"`
	Coordinate     string `json:"Titik Koordinat Lokasi"`
	Address        string `json:"Alamat"`
	ConnectionType string `json:"Jenis Koneksi"`
	Router         string `json:"Nama Router"`
}

func (c *Customer) Active() bool { return c.Status == StatusOn }
