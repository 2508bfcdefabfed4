package model

// Category 商品分类
type Category struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// Farm 农场 / 产地
type Farm struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// SocialLink 社交媒体链接
type SocialLink struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// Page 前台页面
type Page struct {
	ID        ID     `json:"id,omitempty"`
	Name      string `json:"name"`
	Href      string `json:"href"`
	IsDefault bool   `json:"isDefault"`
}
