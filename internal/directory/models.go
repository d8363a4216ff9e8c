package directory

// Photo is one entry of the Directory's photo listing. Only ID, Alt and
// DisplayOrder are guaranteed; the public listing omits the URL fields.
type Photo struct {
	ID              int64  `json:"id"`
	URL             string `json:"url,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	CDNFullURL      string `json:"cdn_full_url,omitempty"`
	CDNThumbnailURL string `json:"cdn_thumbnail_url,omitempty"`
	Alt             string `json:"alt"`
	DisplayOrder    int    `json:"display_order"`
}

// FullURL returns the best full-resolution URL, preferring the CDN copy.
func (p Photo) FullURL() string {
	if p.CDNFullURL != "" {
		return p.CDNFullURL
	}
	return p.URL
}

// Thumbnail returns the best thumbnail URL, preferring the CDN copy.
// Empty when the metadata carries no thumbnail.
func (p Photo) Thumbnail() string {
	if p.CDNThumbnailURL != "" {
		return p.CDNThumbnailURL
	}
	return p.ThumbnailURL
}

// NewPhoto is the body of a create request.
type NewPhoto struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Alt          string `json:"alt"`
}

// Order assigns a display position to one photo in a bulk reorder.
type Order struct {
	ID           int64 `json:"id"`
	DisplayOrder int   `json:"display_order"`
}

// Video is one entry of the video listing. URL is nil until published.
type Video struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	URL          *string `json:"url"`
	DisplayOrder int     `json:"display_order"`
}

type photoList struct {
	Photos []Photo `json:"photos"`
}

type videoList struct {
	Videos []Video `json:"videos"`
}

type reorderRequest struct {
	Orders []Order `json:"orders"`
}

type videoUpdate struct {
	ID  int64   `json:"id"`
	URL *string `json:"url"`
}

type mutationResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
