package catalog

import "strings"

// UnassignedCluster marks an item that has not been through the cluster builder.
const UnassignedCluster = -1

// Item is one sellable laptop (immutable value object).
type Item struct {
	id           string
	name         string
	price        float64
	ramGB        float64
	storageGB    float64
	screenSize   float64
	weightKg     float64
	processor    string
	tier         Tier
	gpu          string
	dedicatedGPU bool
	batteryHours float64
	performance  float64
	portability  float64
	value        float64
	rating       float64
	clusterID    int
	malformed    bool
}

// Attributes holds the raw attribute values of an item.
type Attributes struct {
	Name         string
	Price        float64
	RAMGB        float64
	StorageGB    float64
	ScreenSize   float64
	WeightKg     float64
	Processor    string
	GPU          string
	DedicatedGPU bool
	BatteryHours float64
	Performance  float64
	Portability  float64
	Value        float64
	Rating       float64
}

// Reconstruct creates an Item without validation (catalog hydration).
// The processor tier is derived once here.
func Reconstruct(id string, a Attributes) Item {
	return Item{
		id:           id,
		name:         a.Name,
		price:        a.Price,
		ramGB:        a.RAMGB,
		storageGB:    a.StorageGB,
		screenSize:   a.ScreenSize,
		weightKg:     a.WeightKg,
		processor:    a.Processor,
		tier:         ParseTier(a.Processor),
		gpu:          a.GPU,
		dedicatedGPU: a.DedicatedGPU,
		batteryHours: a.BatteryHours,
		performance:  a.Performance,
		portability:  a.Portability,
		value:        a.Value,
		rating:       a.Rating,
		clusterID:    UnassignedCluster,
	}
}

// ID returns the catalog identifier.
func (i *Item) ID() string { return i.id }

// Name returns the display name.
func (i *Item) Name() string { return i.name }

// Price returns the price in rupees.
func (i *Item) Price() float64 { return i.price }

// RAMGB returns the memory size in gigabytes.
func (i *Item) RAMGB() float64 { return i.ramGB }

// StorageGB returns the storage size in gigabytes.
func (i *Item) StorageGB() float64 { return i.storageGB }

// ScreenSize returns the screen diagonal in inches.
func (i *Item) ScreenSize() float64 { return i.screenSize }

// WeightKg returns the weight in kilograms.
func (i *Item) WeightKg() float64 { return i.weightKg }

// Processor returns the processor name as listed.
func (i *Item) Processor() string { return i.processor }

// Tier returns the processor tier parsed at ingestion.
func (i *Item) Tier() Tier { return i.tier }

// GPU returns the GPU name (empty for integrated graphics without a name).
func (i *Item) GPU() string { return i.gpu }

// DedicatedGPU reports whether the item has discrete graphics.
func (i *Item) DedicatedGPU() bool { return i.dedicatedGPU }

// BatteryHours returns the rated battery life.
func (i *Item) BatteryHours() float64 { return i.batteryHours }

// Performance returns the derived performance score (0-100).
func (i *Item) Performance() float64 { return i.performance }

// Portability returns the derived portability score (0-100).
func (i *Item) Portability() float64 { return i.portability }

// Value returns the derived value-for-money score (0-100).
func (i *Item) Value() float64 { return i.value }

// Rating returns the user-rating equivalent quality score.
func (i *Item) Rating() float64 { return i.rating }

// ClusterID returns the similarity cluster, or UnassignedCluster.
func (i *Item) ClusterID() int { return i.clusterID }

// Malformed reports whether a field failed type coercion at ingestion.
func (i *Item) Malformed() bool { return i.malformed }

// WithCluster returns a copy assigned to the given cluster.
func (i *Item) WithCluster(id int) Item {
	c := *i
	c.clusterID = id
	return c
}

// WithMalformed returns a copy flagged as malformed.
func (i *Item) WithMalformed() Item {
	c := *i
	c.malformed = true
	return c
}

// Signature identifies the technical configuration of an item. Rows that
// differ only cosmetically (color SKUs) share a signature.
type Signature struct {
	Processor  string
	RAMGB      float64
	StorageGB  float64
	GPU        string
	ScreenSize float64
}

// Signature returns the case-normalized configuration signature.
func (i *Item) Signature() Signature {
	gpu := strings.ToLower(strings.TrimSpace(i.gpu))
	if gpu == "" {
		gpu = "integrated"
	}
	return Signature{
		Processor:  strings.ToLower(strings.TrimSpace(i.processor)),
		RAMGB:      i.ramGB,
		StorageGB:  i.storageGB,
		GPU:        gpu,
		ScreenSize: i.screenSize,
	}
}
