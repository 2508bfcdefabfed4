package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate 规格：名称必填，价格不能为负
func (v Variant) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required),
		validation.Field(&v.Price, validation.Min(0.0)),
	)
}

// Validate 商品：名称必填，至少一个规格
func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Variants, validation.Required),
	)
}

func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
	)
}

func (f Farm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required),
	)
}

func (l SocialLink) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Name, validation.Required),
		validation.Field(&l.URL, validation.Required, is.URL),
	)
}

// ValidateResourceType 媒体类型只允许 image / video
func ValidateResourceType(kind string) error {
	return validation.Validate(kind, validation.Required, validation.In("image", "video"))
}
