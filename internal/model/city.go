package model

// City represents a catalog city offered as a lookup suggestion
type City struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	CountryCode string `db:"country_code" json:"country_code"`
	Population  int    `db:"population" json:"population"`
}

// Query returns the text submitted to the weather provider for this city
func (c City) Query() string {
	if c.CountryCode == "" {
		return c.Name
	}
	return c.Name + "," + c.CountryCode
}
