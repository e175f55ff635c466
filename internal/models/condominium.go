package models

// Condominium is a managed property.
type Condominium struct {
	Base
	Name       string    `gorm:"size:200;not null" json:"name"`
	Address    string    `gorm:"size:300;not null" json:"address"`
	City       string    `gorm:"size:100;not null" json:"city"`
	Province   string    `gorm:"size:2;not null" json:"province"`
	PostalCode string    `gorm:"size:5;not null" json:"postal_code"`
	Managers   []User    `gorm:"many2many:user_condominiums;constraint:OnDelete:CASCADE" json:"managers,omitempty"`
	Expenses   []Expense `gorm:"foreignKey:CondominiumID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the table name; gorm would pluralise it to "condominia".
func (Condominium) TableName() string {
	return "condominiums"
}
