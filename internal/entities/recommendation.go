package entities

// Fixed values written with every recommendation.
const (
	DefaultItemID    = 0
	DefaultUserID    = 1
	DefaultThemeName = "Classic"
	DefaultType      = "external"

	// VisitDateLayout is the format of the visit_date column.
	VisitDateLayout = "2006-01-02"
)

// Recommendation is a curated suggestion persisted to the recommendations table.
// A row is created once per unique title and never updated by the ingester.
type Recommendation struct {
	ID                uint     `gorm:"primaryKey;column:id" json:"id"`
	Title             string   `gorm:"column:title;size:255" json:"title"`
	VisitDate         string   `gorm:"column:visit_date;size:10" json:"visit_date"`
	DateAdded         int64    `gorm:"column:date_added" json:"date_added"`
	ItemID            int      `gorm:"column:item_id" json:"item_id"`
	UserID            int      `gorm:"column:user_id" json:"user_id"`
	Category          Category `gorm:"column:category" json:"category"`
	SubCategory       string   `gorm:"column:sub_category;size:255" json:"sub_category"`
	ThemeName         string   `gorm:"column:theme_name;size:50" json:"theme_name"`
	Type              string   `gorm:"column:type;size:50" json:"type"`
	ReviewerName      string   `gorm:"column:reviewer_name;size:255" json:"reviewer_name"`
	ReviewerPhotoURL  string   `gorm:"column:reviewer_photo_url;type:text" json:"reviewer_photo_url"`
	ThumbnailPhotoURL string   `gorm:"column:thumbnail_photo_url;type:text" json:"thumbnail_photo_url"`
	URLLink           string   `gorm:"column:url_link;type:text" json:"url_link"`
	Address           string   `gorm:"column:address;type:text" json:"address"`
	FilterData        string   `gorm:"column:filter_data;type:text" json:"filter_data"`
}

func (Recommendation) TableName() string {
	return "tbl_recommendation_v2"
}
