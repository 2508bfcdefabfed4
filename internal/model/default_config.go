package model

// DefaultShopName 默认店铺名
const DefaultShopName = "CBD Shop Premium"

// DefaultOrderLink 默认下单链接
const DefaultOrderLink = "https://wa.me/33123456789"

// DefaultConfig 默认配置
// 配置加载失败或尚未加载时使用，保证调用方拿到的配置永远完整
// 每次返回新对象，调用方可以放心修改
func DefaultConfig() *Configuration {
	return &Configuration{
		ShopInfo: ShopInfo{
			Name:            DefaultShopName,
			Description:     "Votre boutique CBD de confiance",
			Logo:            "🌿",
			LogoURL:         "",
			PrimaryColor:    "#000000",
			SecondaryColor:  "#ffffff",
			TextColor:       "#ffffff",
			BackgroundColor: "#ffffff",
			BackgroundImage: "",
		},
		ContactInfo: ContactInfo{
			OrderLink: DefaultOrderLink,
			OrderText: "Commandez maintenant",
			Email:     "contact@cbdshop.fr",
			Phone:     "+33 1 23 45 67 89",
		},
		SocialMediaLinks: []SocialLink{},
		Categories:       []Category{},
		Farms:            []Farm{},
		Pages:            []Page{},
		Products:         []Product{},
		AdminSettings: AdminSettings{
			CategoriesTabName:    "Catégories",
			FarmsTabName:         "Fermes",
			CategoriesButtonText: "Catégories",
			FarmsButtonText:      "Fermes",
		},
		PageContent: PageContent{
			"homepage": {
				"heroTitle":          "Produits CBD Premium",
				"heroSubtitle":       "Découvrez notre sélection de produits CBD de qualité supérieure",
				"heroButtonText":     "Voir nos produits",
				"sectionTitle":       "Nos Produits Populaires",
				"categoriesLabel":    "Types de produits",
				"farmLabel":          "Boutique",
				"allCategoriesLabel": "Tous nos produits",
				"farmProductsLabel":  "Produits exclusifs",
			},
			"contact": {
				"title":       "Contactez-nous",
				"subtitle":    "Nous sommes là pour vous aider",
				"description": "Pour toute commande ou question, contactez-nous directement via notre plateforme de commande.",
			},
			"socialMedia": {
				"title":    "Suivez-nous sur les réseaux sociaux",
				"subtitle": "Restez connecté avec nous pour les dernières actualités et offres exclusives",
			},
			"footer": {
				"copyrightText": "© 2024 CBD Shop Premium. Tous droits réservés.",
			},
			"products": {
				"filterTitle":  "Filtrer par catégorie",
				"popularText":  "Populaire",
				"detailsText":  "Voir détails",
				"orderText":    "Commander maintenant",
				"pageTitle":    "Nos Produits",
				"pageSubtitle": "Découvrez notre gamme complète de produits CBD",
			},
		},
	}
}
