package models

import "strings"

// Product represents a catalog product. The catalog is maintained outside this service; it is read-only here.
type Product struct {
	ID          string   `json:"id" bson:"-"`
	Name        string   `json:"name" bson:"name"`
	Price       float64  `json:"price" bson:"price"` // pre-discount unit price
	Images      []string `json:"images" bson:"images"`
	IsFeatured  bool     `json:"isFeatured" bson:"isFeatured"`
	Discount    *int     `json:"discount,omitempty" bson:"discount,omitempty"` // percent, 0-100
	Category    string   `json:"category,omitempty" bson:"category,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Stock       *int     `json:"stock,omitempty" bson:"stock,omitempty"`
	Color       string   `json:"color,omitempty" bson:"color,omitempty"`
}

// HasDiscount reports whether a non-zero discount percentage is set
func (p *Product) HasDiscount() bool {
	return p.Discount != nil && *p.Discount > 0
}

// DiscountPercent returns the discount clamped to 0-100, zero when absent
func (p *Product) DiscountPercent() int {
	if p.Discount == nil {
		return 0
	}
	return max(0, min(100, *p.Discount))
}

// FirstImage returns the representative image, empty when the product has none
func (p *Product) FirstImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// ExceedsStock reports whether quantity is more than the known stock. Unknown stock never exceeds.
func (p *Product) ExceedsStock(quantity int) bool {
	return p.Stock != nil && quantity > *p.Stock
}

// MatchesText is a case-insensitive substring match against name and description
func (p *Product) MatchesText(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

// Clone returns a deep copy so that cart snapshots never share slices or pointers with catalog reads
func (p Product) Clone() Product {
	out := p
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	if p.Discount != nil {
		d := *p.Discount
		out.Discount = &d
	}
	if p.Stock != nil {
		s := *p.Stock
		out.Stock = &s
	}
	return out
}

// Offer is a promotional banner with a validity date in YYYY-MM-DD form
type Offer struct {
	ID          string   `json:"id" bson:"-"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Images      []string `json:"images" bson:"images"`
	Discount    string   `json:"discount" bson:"discount"` // display label, e.g. "50% OFF"
	ValidUntil  string   `json:"validUntil" bson:"validUntil"`
	Category    string   `json:"category,omitempty" bson:"category,omitempty"`
	IsActive    bool     `json:"isActive" bson:"isActive"`
}

// IsValidOn compares the YYYY-MM-DD strings lexically, which matches calendar order
func (o *Offer) IsValidOn(day string) bool {
	return o.ValidUntil >= day
}

// IntPtr is a small helper for the optional integer fields
func IntPtr(v int) *int {
	return &v
}
