package model

// NA is the placeholder written for any optional field the detail page
// omits or displays as "--".
const NA = "N/A"

// ItemRecord holds the data extracted from one sneaker detail page.
// URL, Name, Ticker and ImagePath are required; an item missing any of
// them is discarded before a record is ever built. Every other field is
// either the extracted text or NA.
type ItemRecord struct {
	URL              string `json:"url"`
	Name             string `json:"name"`
	Ticker           string `json:"ticker"`
	ImagePath        string `json:"image_path"`
	ReleaseDate      string `json:"release_date"`
	RetailPrice      string `json:"retail_price"`
	StyleCode        string `json:"style_code"`
	Colorway         string `json:"colorway"`
	NumberOfSales    string `json:"number_of_sales"`
	PricePremium     string `json:"price_premium"`
	AverageSalePrice string `json:"average_sale_price"`
}

// PageBatch is the ordered set of records from one listing page. It may
// be empty; an empty batch is still committed so a reader knows the page
// was visited.
type PageBatch []ItemRecord

// Header returns the CSV column order. The order is fixed so that
// re-running a crawl over unchanged site state produces byte-identical
// page files.
func Header() []string {
	return []string{
		"url",
		"name",
		"ticker",
		"image_path",
		"release_date",
		"retail_price",
		"style_code",
		"colorway",
		"number_of_sales",
		"price_premium",
		"average_sale_price",
	}
}

// Row returns the record's values in Header order.
func (r ItemRecord) Row() []string {
	return []string{
		r.URL,
		r.Name,
		r.Ticker,
		r.ImagePath,
		r.ReleaseDate,
		r.RetailPrice,
		r.StyleCode,
		r.Colorway,
		r.NumberOfSales,
		r.PricePremium,
		r.AverageSalePrice,
	}
}
