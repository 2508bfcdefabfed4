package model

import "time"

// Variant 商品规格
type Variant struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Size  string  `json:"size,omitempty"`
}

// Product 商品
// Category / Farm 存的是名称 (冗余字段)，不是外键
type Product struct {
	ID          ID        `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Images      []string  `json:"images"`
	Video       string    `json:"video"`
	Category    string    `json:"category"`
	Farm        string    `json:"farm,omitempty"`
	Variants    []Variant `json:"variants"`
	Popular     bool      `json:"popular"`
	OrderLink   string    `json:"orderLink"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Normalize 提交前整理商品数据
//   - 去掉名称为空或价格 <= 0 的规格 (表单里未填完的行)
//   - 主图默认取图集第一张
//   - 下单链接为空时使用店铺联系方式里的链接
func (p *Product) Normalize(defaultOrderLink string) {
	variants := make([]Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.Name == "" || v.Price <= 0 {
			continue
		}
		variants = append(variants, v)
	}
	p.Variants = variants

	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	if p.OrderLink == "" {
		p.OrderLink = defaultOrderLink
	}
}

// BulkUpdate 批量更新商品
type BulkUpdate struct {
	IDs     []ID           `json:"ids"`
	Updates map[string]any `json:"updates"`
}
