package catalog

import "github.com/storefront/storefront/internal/model"

func price(v int64) *int64 { return &v }

func sampleProducts() []model.Product {
	return []model.Product{
		{
			ID:          1,
			Name:        "Áo thun Underdog premium",
			Price:       299000,
			OldPrice:    price(399000),
			Category:    "ao-thun",
			Image:       "image/underdog.png",
			Rating:      4.5,
			Description: "Áo thun chất liệu cotton cao cấp, thiết kế hiện đại",
		},
		{
			ID:          2,
			Name:        "Áo sơ mi công sở",
			Price:       599000,
			OldPrice:    price(799000),
			Category:    "ao-so-mi",
			Image:       "image/aosomi.png",
			Rating:      4.8,
			Description: "Áo sơ mi lịch lãm cho môi trường công sở",
		},
		{
			ID:          3,
			Name:        "Giày thể thao độc lạ",
			Price:       1299000,
			OldPrice:    price(1599000),
			Category:    "giay-dep",
			Image:       "image/giaythethao.png",
			Rating:      4.7,
			Description: "Giày thể thao êm ái, phù hợp cho mọi hoạt động",
		},
		{
			ID:          4,
			Name:        "Áo polo nam",
			Price:       459000,
			Category:    "ao-thun",
			Image:       "image/aopolo.png",
			Rating:      4.3,
			Description: "Áo polo thanh lịch, phong cách cổ điển",
		},
		{
			ID:          5,
			Name:        "Giày cao gót nữ",
			Price:       899000,
			OldPrice:    price(1199000),
			Category:    "giay-dep",
			Image:       "image/caogotnu.png",
			Rating:      4.6,
			Description: "Giày cao gót thanh lịch, phù hợp dự tiệc",
		},
		{
			ID:          6,
			Name:        "Quần short nam",
			Price:       120000,
			Category:    "Quan-short",
			Image:       "image/quandui.png",
			Rating:      4.9,
			Description: "Quần short thoải mái, phù hợp mùa hè",
		},
	}
}
