package controllers

import (
	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/services"
)

// WelcomeProps is the home page.
type WelcomeProps struct {
	CanRegister  bool                 `json:"canRegister"`
	Posts        []models.Post        `json:"posts"`
	CategoryTags []models.CategoryTag `json:"category_tags"`
}

// PostDetailProps is the public post page.
type PostDetailProps struct {
	Post         models.Post      `json:"post"`
	RelatedPosts []models.Post    `json:"related_posts"`
	Comments     []models.Comment `json:"comments"`
	CaptchaOn    bool             `json:"captcha_enabled"`
}

// StaticProps is shared by the informational pages.
type StaticProps struct {
	CanRegister bool `json:"canRegister"`
}

// EventsAndNewsProps is the public post listing.
type EventsAndNewsProps struct {
	Posts        services.Page[models.Post] `json:"posts"`
	CategoryTags []models.CategoryTag       `json:"category_tags"`
}

// TeachersPageProps is the public teacher listing.
type TeachersPageProps struct {
	Teachers   services.Page[models.Teacher] `json:"teachers"`
	Categories []models.CategoryTag          `json:"categories"`
}

// FacilitiesPageProps is the public facility listing.
type FacilitiesPageProps struct {
	Facilities services.Page[models.Facility] `json:"facilities"`
	Categories []models.CategoryTag           `json:"categories"`
}

// GalleryPageProps is the public gallery.
type GalleryPageProps struct {
	Galleries services.Page[models.Gallery] `json:"galleries"`
}

// DashboardProps is the admin landing page.
type DashboardProps struct {
	Stats services.DashboardStats `json:"stats"`
}

// CalendarProps lists the events of one month.
type CalendarProps struct {
	Month  string        `json:"month"`
	Events []models.Post `json:"events"`
}

// PostFormProps is the create and edit payload for posts.
type PostFormProps struct {
	Post         *models.Post         `json:"post,omitempty"`
	CategoryTags []models.CategoryTag `json:"category_tags"`
	PostTypes    []PostTypeOption     `json:"post_types"`
}

// PostTypeOption is one entry of the post type select.
type PostTypeOption struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

var postTypes = []PostTypeOption{
	{ID: models.PostTypeNews, Title: "News"},
	{ID: models.PostTypeEvent, Title: "Event"},
	{ID: models.PostTypeAnnouncement, Title: "Announcement"},
}

// LoginProps is the admin login page.
type LoginProps struct {
	CanRegister bool `json:"canRegister"`
}

// PostIndexProps is the admin post list, drafts included.
type PostIndexProps struct {
	Posts services.Page[models.Post] `json:"posts"`
}

// CategoryTagIndexProps is the admin tag list.
type CategoryTagIndexProps struct {
	CategoryTags services.Page[models.CategoryTag] `json:"category_tags"`
	Types        []string                          `json:"types"`
}

// CategoryTagFormProps is the tag create and edit payload.
type CategoryTagFormProps struct {
	CategoryTag *models.CategoryTag `json:"category_tag,omitempty"`
	Types       []string            `json:"types"`
}

// CommentIndexProps is the moderation queue.
type CommentIndexProps struct {
	Comments services.Page[models.Comment] `json:"comments"`
}

// CommentEditProps is one comment under moderation.
type CommentEditProps struct {
	Comment models.Comment `json:"comment"`
}

// UserIndexProps is the admin user list.
type UserIndexProps struct {
	Users services.Page[models.User] `json:"users"`
}

// UserFormProps is the user create and edit payload.
type UserFormProps struct {
	User *models.User `json:"user,omitempty"`
}

// TeacherIndexProps is the admin teacher list.
type TeacherIndexProps struct {
	Teachers services.Page[models.Teacher] `json:"teachers"`
}

// TeacherFormProps is the teacher create and edit payload.
type TeacherFormProps struct {
	Teacher    *models.Teacher      `json:"teacher,omitempty"`
	Categories []models.CategoryTag `json:"categories"`
}

// FacilityIndexProps is the admin facility list.
type FacilityIndexProps struct {
	Facilities services.Page[models.Facility] `json:"facilities"`
}

// FacilityFormProps is the facility create and edit payload.
type FacilityFormProps struct {
	Facility   *models.Facility     `json:"facility,omitempty"`
	Categories []models.CategoryTag `json:"categories"`
}

// GalleryIndexProps is the admin gallery list.
type GalleryIndexProps struct {
	Galleries services.Page[models.Gallery] `json:"galleries"`
}

// GalleryFormProps is the gallery create and edit payload.
type GalleryFormProps struct {
	Gallery *models.Gallery `json:"gallery,omitempty"`
}
