package geo

import "time"

type Continent struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_continent_name" json:"nome"`
	Description string    `gorm:"column:description" json:"descricao"`
	Countries   []Country `gorm:"foreignKey:ContinentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"paises,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Continent) TableName() string { return "continent" }

type Country struct {
	ID               uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string   `gorm:"column:name;not null" json:"nome"`
	Population       int64    `gorm:"column:population;not null;default:0" json:"populacao"`
	OfficialLanguage string   `gorm:"column:official_language;not null;index" json:"idioma_oficial"`
	Currency         string   `gorm:"column:currency;not null" json:"moeda"`
	ContinentID      uint     `gorm:"column:continent_id;not null;index" json:"id_continente"`
	FlagURL          *string  `gorm:"column:flag_url" json:"url_bandeira"`
	GDPPerCapita     *float64 `gorm:"column:gdp_per_capita" json:"pib_per_capita"`
	Inflation        *float64 `gorm:"column:inflation" json:"inflacao"`

	Continent *Continent `gorm:"foreignKey:ContinentID" json:"continente,omitempty"`
	Cities    []City     `gorm:"foreignKey:CountryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"cidades,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Country) TableName() string { return "country" }

type City struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string  `gorm:"column:name;not null" json:"nome"`
	Population int64   `gorm:"column:population;not null;default:0" json:"populacao"`
	Latitude   float64 `gorm:"column:latitude;not null;default:0" json:"latitude"`
	Longitude  float64 `gorm:"column:longitude;not null;default:0" json:"longitude"`
	CountryID  uint    `gorm:"column:country_id;not null;index" json:"id_pais"`

	Country *Country `gorm:"foreignKey:CountryID" json:"pais,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (City) TableName() string { return "city" }

// Models lists every table in migration order.
var Models = []any{
	&Continent{},
	&Country{},
	&City{},
}
