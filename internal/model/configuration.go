package model

import (
	"bytes"
	"encoding/json"
)

// ShopInfo 店铺基础信息
type ShopInfo struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Logo            string `json:"logo"`
	LogoURL         string `json:"logoUrl"`
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	TextColor       string `json:"textColor"`
	BackgroundColor string `json:"backgroundColor"`
	BackgroundImage string `json:"backgroundImage"`
}

// ContactInfo 联系方式 / 下单入口
type ContactInfo struct {
	OrderLink string `json:"orderLink"`
	OrderText string `json:"orderText"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// AdminSettings 后台文案覆盖
type AdminSettings struct {
	CategoriesTabName    string `json:"categoriesTabName"`
	FarmsTabName         string `json:"farmsTabName"`
	CategoriesButtonText string `json:"categoriesButtonText"`
	FarmsButtonText      string `json:"farmsButtonText"`
}

// PageContent 各页面文案，key 为页面名 (homepage / contact / ...)
type PageContent map[string]map[string]string

// Configuration 店铺整体配置 (聚合文档)
type Configuration struct {
	ShopInfo         ShopInfo      `json:"shopInfo"`
	ContactInfo      ContactInfo   `json:"contactInfo"`
	SocialMediaLinks []SocialLink  `json:"socialMediaLinks"`
	Categories       []Category    `json:"categories"`
	Farms            []Farm        `json:"farms"`
	Pages            []Page        `json:"pages"`
	Products         []Product     `json:"products"`
	AdminSettings    AdminSettings `json:"adminSettings"`
	PageContent      PageContent   `json:"pageContent"`
}

// normalize 保证列表字段非 nil
func (c *Configuration) normalize() {
	if c.SocialMediaLinks == nil {
		c.SocialMediaLinks = []SocialLink{}
	}
	if c.Categories == nil {
		c.Categories = []Category{}
	}
	if c.Farms == nil {
		c.Farms = []Farm{}
	}
	if c.Pages == nil {
		c.Pages = []Page{}
	}
	if c.Products == nil {
		c.Products = []Product{}
	}
	if c.PageContent == nil {
		c.PageContent = PageContent{}
	}
}

// DecodeConfiguration 解析服务端配置
// 缺失的列表补成空列表，调用方无需判空；空响应体或 null 视为没有配置，返回默认配置
func DecodeConfiguration(data []byte) (*Configuration, error) {
	if b := bytes.TrimSpace(data); len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return DefaultConfig(), nil
	}

	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.normalize()
	return &c, nil
}

// Clone 深拷贝 (快照对外只给副本)
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	out.SocialMediaLinks = append([]SocialLink{}, c.SocialMediaLinks...)
	out.Categories = append([]Category{}, c.Categories...)
	out.Farms = append([]Farm{}, c.Farms...)
	out.Pages = append([]Page{}, c.Pages...)
	out.Products = make([]Product, len(c.Products))
	for i, p := range c.Products {
		p.Images = append([]string{}, p.Images...)
		p.Variants = append([]Variant{}, p.Variants...)
		out.Products[i] = p
	}
	out.PageContent = make(PageContent, len(c.PageContent))
	for page, blocks := range c.PageContent {
		cp := make(map[string]string, len(blocks))
		for k, v := range blocks {
			cp[k] = v
		}
		out.PageContent[page] = cp
	}
	return &out
}

// PopularProducts 标记为热门的商品
func (c *Configuration) PopularProducts() []Product {
	out := []Product{}
	for _, p := range c.Products {
		if p.Popular {
			out = append(out, p)
		}
	}
	return out
}

// ShopSettings 店铺设置更新请求
// 只提交需要修改的部分，nil 字段不发送
type ShopSettings struct {
	ShopInfo      *ShopInfo      `json:"shopInfo,omitempty"`
	ContactInfo   *ContactInfo   `json:"contactInfo,omitempty"`
	AdminSettings *AdminSettings `json:"adminSettings,omitempty"`
	PageContent   PageContent    `json:"pageContent,omitempty"`
}
