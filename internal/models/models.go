package models

// All lists every table model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&CMSContent{},
		&Testimonial{},
	}
}
