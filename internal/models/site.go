package models

type About struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description []string `json:"description"`
	Image       string   `json:"image"`
	Skills      []string `json:"skills"`
}

type Contact struct {
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Location     string   `json:"location"`
	AvailableFor []string `json:"availableFor"`
}

type SiteInfo struct {
	About   About   `json:"about"`
	Contact Contact `json:"contact"`
}

// SiteInfoPatch replaces whichever sections are non-nil.
type SiteInfoPatch struct {
	About   *About   `json:"about,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

func DefaultSiteInfo() SiteInfo {
	return SiteInfo{
		About: About{
			Title:       "About Me",
			Subtitle:    "CG Artist & Designer",
			Description: []string{},
			Image:       "/images/cg (3).jpg",
			Skills:      []string{},
		},
		Contact: Contact{
			Email:        "contact@example.com",
			Phone:        "+1 (555) 123-4567",
			Location:     "Los Angeles, CA",
			AvailableFor: []string{},
		},
	}
}
