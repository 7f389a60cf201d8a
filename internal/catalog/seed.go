// Package catalog provides the product items that feed the document store:
// the built-in demo catalog and loaders for catalog files.
package catalog

import "productrag/internal/domain"

func str(s string) domain.Value { return domain.StringValue(s) }

// SampleItems returns the demo catalog. Each call returns fresh values.
func SampleItems() []domain.Item {
	return []domain.Item{
		{
			ID:            "prod-001",
			Name:          "Wireless Bluetooth Headphones",
			Description:   "Premium noise-canceling wireless headphones with 30-hour battery life, comfortable over-ear design, and crystal-clear audio quality.",
			Category:      "Electronics",
			Price:         149.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 50,
			Brand:         "SoundMax",
			Attributes: map[string]domain.Value{
				"color":        str("Black"),
				"connectivity": str("Bluetooth 5.0"),
				"battery_life": str("30 hours"),
			},
		},
		{
			ID:            "prod-002",
			Name:          "Smart Fitness Watch",
			Description:   "Advanced fitness tracker with heart rate monitoring, GPS, sleep tracking, and water resistance up to 50 meters.",
			Category:      "Electronics",
			Price:         199.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 30,
			Brand:         "FitTech",
			Attributes: map[string]domain.Value{
				"color":            str("Silver"),
				"display":          str("AMOLED"),
				"water_resistance": str("50m"),
			},
		},
		{
			ID:            "prod-003",
			Name:          "Organic Cotton T-Shirt",
			Description:   "Soft and sustainable organic cotton t-shirt with a classic fit. Available in multiple colors and sizes.",
			Category:      "Clothing",
			Price:         29.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 200,
			Brand:         "EcoWear",
			Attributes: map[string]domain.Value{
				"material": str("100% Organic Cotton"),
				"fit":      str("Classic"),
				"sizes":    str("XS-XXL"),
			},
		},
		{
			ID:            "prod-004",
			Name:          "Stainless Steel Water Bottle",
			Description:   "Double-wall insulated water bottle that keeps drinks cold for 24 hours or hot for 12 hours. BPA-free and eco-friendly.",
			Category:      "Home & Kitchen",
			Price:         34.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 100,
			Brand:         "HydroLife",
			Attributes: map[string]domain.Value{
				"capacity":   str("750ml"),
				"material":   str("Stainless Steel"),
				"insulation": str("Double-wall"),
			},
		},
		{
			ID:            "prod-005",
			Name:          "Laptop Backpack",
			Description:   "Durable and spacious laptop backpack with anti-theft design, USB charging port, and ergonomic padding. Fits laptops up to 15.6 inches.",
			Category:      "Bags & Accessories",
			Price:         59.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 75,
			Brand:         "TravelPro",
			Attributes: map[string]domain.Value{
				"laptop_size": str("15.6 inches"),
				"features":    str("USB port, Anti-theft"),
				"material":    str("Water-resistant Polyester"),
			},
		},
		{
			ID:            "prod-006",
			Name:          "Wireless Phone Charger",
			Description:   "Fast wireless charging pad compatible with all Qi-enabled devices. Sleek design with LED indicator and safety protection.",
			Category:      "Electronics",
			Price:         24.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 120,
			Brand:         "ChargeFast",
			Attributes: map[string]domain.Value{
				"power":         str("15W"),
				"compatibility": str("Qi-enabled devices"),
				"features":      str("LED indicator, Overcharge protection"),
			},
		},
		{
			ID:            "prod-007",
			Name:          "Running Shoes",
			Description:   "Lightweight and breathable running shoes with responsive cushioning and excellent grip. Perfect for daily training and marathons.",
			Category:      "Footwear",
			Price:         119.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 45,
			Brand:         "SprintMax",
			Attributes: map[string]domain.Value{
				"type":       str("Running"),
				"cushioning": str("Responsive foam"),
				"sizes":      str("US 6-13"),
			},
		},
		{
			ID:            "prod-008",
			Name:          "Coffee Maker",
			Description:   "Programmable drip coffee maker with 12-cup capacity, built-in grinder, and thermal carafe to keep coffee hot for hours.",
			Category:      "Home & Kitchen",
			Price:         89.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 25,
			Brand:         "BrewMaster",
			Attributes: map[string]domain.Value{
				"capacity": str("12 cups"),
				"features": str("Built-in grinder, Programmable"),
				"carafe":   str("Thermal"),
			},
		},
		{
			ID:            "prod-009",
			Name:          "Yoga Mat",
			Description:   "Non-slip yoga mat with extra thickness for joint support. Eco-friendly TPE material with alignment markers.",
			Category:      "Sports & Fitness",
			Price:         39.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 80,
			Brand:         "ZenFit",
			Attributes: map[string]domain.Value{
				"thickness": str("6mm"),
				"material":  str("TPE"),
				"features":  str("Non-slip, Alignment markers"),
			},
		},
		{
			ID:            "prod-010",
			Name:          "Bluetooth Speaker",
			Description:   "Portable waterproof Bluetooth speaker with 360-degree sound, 20-hour battery life, and built-in microphone for calls.",
			Category:      "Electronics",
			Price:         79.99,
			Currency:      domain.DefaultCurrency,
			StockQuantity: 60,
			Brand:         "SoundMax",
			Attributes: map[string]domain.Value{
				"waterproof":   str("IPX7"),
				"battery_life": str("20 hours"),
				"features":     str("360 sound, Built-in mic"),
			},
		},
	}
}
