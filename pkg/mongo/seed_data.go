package mongo

import (
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const unsplash = "https://images.unsplash.com/"

func img(path string) string {
	return unsplash + path + "?auto=format&fit=crop&w=500&h=500"
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name: "Classic Moleskin Jacket", Price: 199.99, IsFeatured: true, Discount: models.IntPtr(20),
			Category: "men", Color: "brown", Stock: models.IntPtr(15),
			Description: "A timeless moleskin jacket that combines durability with style. Perfect for cooler days.",
			Images:      []string{img("photo-1591047139829-d91aecb6caea"), img("photo-1608063615781-e2ef8c6dcaea")},
		},
		{
			Name: "Corduroy Trousers", Price: 89.99, IsFeatured: true, Category: "men", Color: "blue", Stock: models.IntPtr(25),
			Description: "Comfortable and stylish corduroy trousers that work well for casual and semi-formal occasions.",
			Images:      []string{img("photo-1624378439575-d8705ad7ae80")},
		},
		{
			Name: "Tattersall Shirt", Price: 79.99, IsFeatured: true, Discount: models.IntPtr(15),
			Category: "men", Color: "white", Stock: models.IntPtr(30),
			Description: "A classic tattersall check shirt made from premium cotton. Versatile and comfortable.",
			Images:      []string{img("photo-1596755094514-f87e34085b2c")},
		},
		{
			Name: "Wool Sweater", Price: 129.99, IsFeatured: true, Category: "men", Color: "grey", Stock: models.IntPtr(20),
			Description: "A warm and comfortable wool sweater, perfect for layering during colder months.",
			Images:      []string{img("photo-1576871337622-98d48d1cf531")},
		},
		{
			Name: "Tailored Blazer", Price: 199.99, Category: "men", Color: "charcoal", Stock: models.IntPtr(12),
			Description: "A perfectly tailored blazer made from premium wool blend fabric, ideal for formal occasions.",
			Images:      []string{img("photo-1617127365659-c47fa864d8bc")},
		},
		{
			Name: "Silk Blouse", Price: 129.99, Discount: models.IntPtr(10), Category: "women", Color: "red", Stock: models.IntPtr(18),
			Description: "An elegant silk blouse that transitions seamlessly from office to evening wear.",
			Images:      []string{img("photo-1564257631407-4deb1f99d992")},
		},
		{
			Name: "Cashmere Sweater Dress", Price: 179.99, IsFeatured: true, Category: "women", Color: "beige", Stock: models.IntPtr(10),
			Description: "A luxurious cashmere sweater dress that offers both comfort and elegance for cooler days.",
			Images:      []string{img("photo-1525450824786-227cbef70703")},
		},
		{
			Name: "Tailored Wool Coat", Price: 299.99, Discount: models.IntPtr(15), Category: "women", Color: "camel", Stock: models.IntPtr(8),
			Description: "A beautifully tailored wool coat with a timeless silhouette, perfect for winter elegance.",
			Images:      []string{img("photo-1548624313-0396c75e4b1a")},
		},
		{
			Name: "Pleated Midi Skirt", Price: 89.99, IsFeatured: true, Category: "women", Color: "navy", Stock: models.IntPtr(22),
			Description: "A versatile pleated midi skirt that can be dressed up or down for any occasion.",
			Images:      []string{img("photo-1583496661160-fb5886a0aaaa")},
		},
		{
			Name: "Leather Handbag", Price: 249.99, Category: "accessories", Color: "black", Stock: models.IntPtr(12),
			Description: "A premium leather handbag with multiple compartments and elegant design.",
			Images:      []string{img("photo-1584917865442-de89df76afd3")},
		},
		{
			Name: "Cashmere Scarf", Price: 89.99, Discount: models.IntPtr(5), Category: "accessories", Color: "green", Stock: models.IntPtr(22),
			Description: "A luxuriously soft cashmere scarf that adds elegance to any outfit.",
			Images:      []string{img("photo-1520903920243-1d5cdb3840cf")},
		},
		{
			Name: "Patterned Socks", Price: 12.99, Category: "accessories", Color: "multicolor", Stock: models.IntPtr(50),
			Description: "Playful patterned cotton socks.",
		},
	}
}

// sampleOffers expire relative to now so a fresh seed always has something to show
func sampleOffers(now time.Time) []models.Offer {
	day := func(days int) string { return now.AddDate(0, 0, days).Format(time.DateOnly) }
	return []models.Offer{
		{
			Title: "Summer Collection Sale", Description: "Get up to 50% off on our latest summer collection. Limited time offer!",
			Images:   []string{unsplash + "photo-1562886877-f12251816e01?auto=format&fit=crop&w=800&h=400"},
			Discount: "50% OFF", ValidUntil: day(30), Category: "seasonal", IsActive: true,
		},
		{
			Title: "New Season Arrivals", Description: "Discover our fresh new styles for the upcoming season. Shop now!",
			Images:   []string{unsplash + "photo-1483985988355-763728e1935b?auto=format&fit=crop&w=800&h=400"},
			Discount: "NEW", ValidUntil: day(35), Category: "new-arrivals", IsActive: true,
		},
		{
			Title: "Premium Collection", Description: "Exclusive deals on our premium range. Luxury meets affordability.",
			Images:   []string{unsplash + "photo-1441986300917-64674bd600d8?auto=format&fit=crop&w=800&h=400"},
			Discount: "30% OFF", ValidUntil: day(27), Category: "premium", IsActive: true,
		},
	}
}

func sampleOrders(now time.Time) []models.Order {
	return []models.Order{
		{
			UserID:    "sample-user-id",
			OrderDate: now.UTC(),
			OrderItems: []models.OrderItem{
				{ProductID: "sample-product-id-1", Name: "Classic Moleskin Jacket", Price: 199.99, Discount: models.IntPtr(20), Quantity: 1, Image: img("photo-1591047139829-d91aecb6caea")},
				{ProductID: "sample-product-id-2", Name: "Corduroy Trousers", Price: 89.99, Discount: models.IntPtr(0), Quantity: 2, Image: img("photo-1624378439575-d8705ad7ae80")},
			},
			ShippingAddress: models.ShippingAddress{
				FullName: "John Doe", AddressLine1: "123 Main St", AddressLine2: "Apt 4B",
				City: "New York", State: "NY", PostalCode: "10001", Country: "United States",
			},
			PaymentMethod: "Credit Card",
			PaymentID:     "sample-payment-id",
			Subtotal:      379.97,
			ShippingCost:  0,
			Discount:      40.00,
			Total:         339.97,
			Status:        models.OrderStatusCompleted,
		},
	}
}
