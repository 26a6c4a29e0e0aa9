package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/models"
)

// TeamHandler manages team member and CV endpoints.
type TeamHandler struct {
	db *gorm.DB
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{db: db}
}

func jsonStringList(raw datatypes.JSON) []string {
	var out []string
	if len(raw) == 0 {
		return []string{}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

func cvResponse(cv *models.CV) gin.H {
	if cv == nil {
		return nil
	}
	education := make([]gin.H, 0, len(cv.Education))
	for _, e := range cv.Education {
		education = append(education, gin.H{
			"id": e.ID, "yearRange": e.YearRange, "title": e.Title,
			"subtitle": e.Subtitle, "description": e.Description,
		})
	}
	experience := make([]gin.H, 0, len(cv.Experience))
	for _, e := range cv.Experience {
		experience = append(experience, gin.H{
			"id": e.ID, "yearRange": e.YearRange, "title": e.Title,
			"subtitle": e.Subtitle, "description": e.Description,
		})
	}
	services := make([]gin.H, 0, len(cv.Services))
	for _, s := range cv.Services {
		services = append(services, gin.H{
			"id": s.ID, "icon": s.Icon, "alt": s.Alt,
			"name": s.Name, "description": s.Description,
		})
	}
	achievements := make([]gin.H, 0, len(cv.Achievements))
	for _, a := range cv.Achievements {
		achievements = append(achievements, gin.H{
			"id": a.ID, "icon": a.Icon, "value": a.Value, "description": a.Description,
		})
	}
	testimonials := make([]gin.H, 0, len(cv.Testimonials))
	for _, t := range cv.Testimonials {
		testimonials = append(testimonials, gin.H{
			"id": t.ID, "quote": t.Quote, "image": t.Image, "name": t.Name,
		})
	}
	certifications := make([]gin.H, 0, len(cv.UserCertifications))
	for _, uc := range cv.UserCertifications {
		entry := gin.H{"id": uc.ID, "href": uc.Href}
		if uc.Certification != nil {
			entry["certification"] = certificationResponse(uc.Certification)
		}
		certifications = append(certifications, entry)
	}
	return gin.H{
		"id":                  cv.ID,
		"userId":              cv.UserID,
		"profileName":         cv.ProfileName,
		"profileImage":        cv.ProfileImage,
		"email":               cv.Email,
		"jobTitle":            cv.JobTitle,
		"greetingTitle":       cv.GreetingTitle,
		"greetingDescription": cv.GreetingDescription,
		"footerText":          cv.FooterText,
		"languages":           jsonStringList(cv.Languages),
		"interests":           jsonStringList(cv.Interests),
		"education":           education,
		"experience":          experience,
		"services":            services,
		"achievements":        achievements,
		"testimonials":        testimonials,
		"userCertifications":  certifications,
	}
}

// List returns TEAM users that carry a CV.
func (h *TeamHandler) List(c *gin.Context) {
	var rows []models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Joins("JOIN cvs ON cvs.user_id = users.id").
		Where("users.user_type = ?", models.UserTypeTeam).
		Preload("CV").Preload("Client").
		Order("users.name ASC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list team failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		entry := userResponse(&rows[i])
		entry["cv"] = cvResponse(rows[i].CV)
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"teamMembers": out})
}

// createTeamMemberRequest defines the request body for team member creation.
type createTeamMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create creates a TEAM user with an empty CV.
func (h *TeamHandler) Create(c *gin.Context) {
	var body createTeamMemberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}

	var existing int64
	errCount := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("email = ?", email).Count(&existing).Error
	if errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}

	user := models.User{
		Name:           strings.TrimSpace(body.Name),
		Email:          email,
		UserType:       models.UserTypeTeam,
		AvatarURL:      gravatarURL(email),
		FirstTimeLogin: true,
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&user).Error; errCreate != nil {
			return errCreate
		}
		cv := models.CV{
			UserID:      user.ID,
			ProfileName: user.Name,
			Email:       user.Email,
			Languages:   datatypes.JSON([]byte("[]")),
			Interests:   datatypes.JSON([]byte("[]")),
		}
		return tx.Create(&cv).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create team member failed"})
		return
	}
	c.JSON(http.StatusCreated, userResponse(&user))
}

func (h *TeamHandler) loadCV(c *gin.Context, userID uint64) (*models.User, bool) {
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("CV").
		Preload("CV.Education").
		Preload("CV.Experience").
		Preload("CV.Services").
		Preload("CV.Achievements").
		Preload("CV.Testimonials").
		Preload("CV.UserCertifications").
		Preload("CV.UserCertifications.Certification").
		Where("user_type = ?", models.UserTypeTeam).
		First(&user, userID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &user, true
}

// Get returns the full CV tree for one team member.
func (h *TeamHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, ok := h.loadCV(c, id)
	if !ok {
		return
	}
	entry := userResponse(user)
	entry["cv"] = cvResponse(user.CV)
	c.JSON(http.StatusOK, entry)
}

// cvEntryRequest covers education and experience rows.
type cvEntryRequest struct {
	YearRange   string `json:"yearRange"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

// cvServiceRequest covers offered-service rows.
type cvServiceRequest struct {
	Icon        string `json:"icon"`
	Alt         string `json:"alt"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// cvAchievementRequest covers achievement rows.
type cvAchievementRequest struct {
	Icon        string `json:"icon"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// cvTestimonialRequest covers testimonial rows.
type cvTestimonialRequest struct {
	Quote string `json:"quote"`
	Image string `json:"image"`
	Name  string `json:"name"`
}

// cvCertificationRequest links a shared certification by title, creating it
// when it does not exist yet.
type cvCertificationRequest struct {
	Title string `json:"title"`
	Logo  string `json:"logo"`
	Alt   string `json:"alt"`
	Href  string `json:"href"`
}

// updateCVRequest defines the request body for the CV replacement update.
type updateCVRequest struct {
	ProfileName         *string                   `json:"profileName"`
	ProfileImage        *string                   `json:"profileImage"`
	Email               *string                   `json:"email"`
	JobTitle            *string                   `json:"jobTitle"`
	GreetingTitle       *string                   `json:"greetingTitle"`
	GreetingDescription *string                   `json:"greetingDescription"`
	FooterText          *string                   `json:"footerText"`
	Languages           *[]string                 `json:"languages"`
	Interests           *[]string                 `json:"interests"`
	Education           *[]cvEntryRequest         `json:"education"`
	Experience          *[]cvEntryRequest         `json:"experience"`
	Services            *[]cvServiceRequest       `json:"services"`
	Achievements        *[]cvAchievementRequest   `json:"achievements"`
	Testimonials        *[]cvTestimonialRequest   `json:"testimonials"`
	Certifications      *[]cvCertificationRequest `json:"certifications"`
}

// Update replaces CV fields and child collections. All writes happen inside
// one transaction so a failed update never leaves a partially replaced CV.
func (h *TeamHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateCVRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var cv models.CV
		errFind := tx.Joins("JOIN users ON users.id = cvs.user_id").
			Where("cvs.user_id = ? AND users.user_type = ?", id, models.UserTypeTeam).
			First(&cv).Error
		if errFind != nil {
			return errFind
		}

		updates := map[string]any{}
		if body.ProfileName != nil {
			updates["profile_name"] = strings.TrimSpace(*body.ProfileName)
		}
		if body.ProfileImage != nil {
			updates["profile_image"] = strings.TrimSpace(*body.ProfileImage)
		}
		if body.Email != nil {
			updates["email"] = strings.TrimSpace(*body.Email)
		}
		if body.JobTitle != nil {
			updates["job_title"] = strings.TrimSpace(*body.JobTitle)
		}
		if body.GreetingTitle != nil {
			updates["greeting_title"] = strings.TrimSpace(*body.GreetingTitle)
		}
		if body.GreetingDescription != nil {
			updates["greeting_description"] = strings.TrimSpace(*body.GreetingDescription)
		}
		if body.FooterText != nil {
			updates["footer_text"] = strings.TrimSpace(*body.FooterText)
		}
		if body.Languages != nil {
			raw, errMarshal := json.Marshal(*body.Languages)
			if errMarshal != nil {
				return errMarshal
			}
			updates["languages"] = datatypes.JSON(raw)
		}
		if body.Interests != nil {
			raw, errMarshal := json.Marshal(*body.Interests)
			if errMarshal != nil {
				return errMarshal
			}
			updates["interests"] = datatypes.JSON(raw)
		}
		if len(updates) > 0 {
			if errUpdate := tx.Model(&cv).Updates(updates).Error; errUpdate != nil {
				return errUpdate
			}
		}

		if body.Education != nil {
			if errClear := tx.Where("cv_id = ?", cv.ID).Delete(&models.Education{}).Error; errClear != nil {
				return errClear
			}
			for _, e := range *body.Education {
				row := models.Education{
					CVID: cv.ID, YearRange: e.YearRange, Title: e.Title,
					Subtitle: e.Subtitle, Description: e.Description,
				}
				if errCreate := tx.Create(&row).Error; errCreate != nil {
					return errCreate
				}
			}
		}
		if body.Experience != nil {
			if errClear := tx.Where("cv_id = ?", cv.ID).Delete(&models.Experience{}).Error; errClear != nil {
				return errClear
			}
			for _, e := range *body.Experience {
				row := models.Experience{
					CVID: cv.ID, YearRange: e.YearRange, Title: e.Title,
					Subtitle: e.Subtitle, Description: e.Description,
				}
				if errCreate := tx.Create(&row).Error; errCreate != nil {
					return errCreate
				}
			}
		}
		if body.Services != nil {
			if errClear := tx.Where("cv_id = ?", cv.ID).Delete(&models.Service{}).Error; errClear != nil {
				return errClear
			}
			for _, s := range *body.Services {
				row := models.Service{
					CVID: cv.ID, Icon: s.Icon, Alt: s.Alt,
					Name: s.Name, Description: s.Description,
				}
				if errCreate := tx.Create(&row).Error; errCreate != nil {
					return errCreate
				}
			}
		}
		if body.Achievements != nil {
			if errClear := tx.Where("cv_id = ?", cv.ID).Delete(&models.Achievement{}).Error; errClear != nil {
				return errClear
			}
			for _, a := range *body.Achievements {
				row := models.Achievement{
					CVID: cv.ID, Icon: a.Icon, Value: a.Value, Description: a.Description,
				}
				if errCreate := tx.Create(&row).Error; errCreate != nil {
					return errCreate
				}
			}
		}
		if body.Testimonials != nil {
			if errClear := tx.Where("cv_id = ?", cv.ID).Delete(&models.Testimonial{}).Error; errClear != nil {
				return errClear
			}
			for _, t := range *body.Testimonials {
				row := models.Testimonial{
					CVID: cv.ID, Quote: t.Quote, Image: t.Image, Name: t.Name,
				}
				if errCreate := tx.Create(&row).Error; errCreate != nil {
					return errCreate
				}
			}
		}
		if body.Certifications != nil {
			if errClear := tx.Where("cv_id = ?", cv.ID).Delete(&models.UserCertification{}).Error; errClear != nil {
				return errClear
			}
			for _, req := range *body.Certifications {
				title := strings.TrimSpace(req.Title)
				if title == "" {
					continue
				}
				var cert models.Certification
				errCert := tx.Where("title = ?", title).First(&cert).Error
				if errors.Is(errCert, gorm.ErrRecordNotFound) {
					logo, alt := defaultCertificationAssets(title, strings.TrimSpace(req.Logo), strings.TrimSpace(req.Alt))
					cert = models.Certification{Title: title, Logo: logo, Alt: alt}
					if errCreate := tx.Create(&cert).Error; errCreate != nil {
						return errCreate
					}
				} else if errCert != nil {
					return errCert
				}
				link := models.UserCertification{
					CVID: cv.ID, CertificationID: cert.ID, Href: strings.TrimSpace(req.Href),
				}
				if errLink := tx.Create(&link).Error; errLink != nil {
					return errLink
				}
			}
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	user, ok := h.loadCV(c, id)
	if !ok {
		return
	}
	entry := userResponse(user)
	entry["cv"] = cvResponse(user.CV)
	c.JSON(http.StatusOK, entry)
}
