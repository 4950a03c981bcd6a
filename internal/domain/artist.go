package domain

type Artist struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	PictureURL string `json:"pictureURL"`
	Popularity int64  `json:"popularity"`
}

type ArtistPage struct {
	Rows []Artist `json:"rows"`
}

// ArtistQuery filters and paginates the artist catalogue.
type ArtistQuery struct {
	Search string
	Limit  int
	Offset int
}
