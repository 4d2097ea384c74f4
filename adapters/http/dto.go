package http

import (
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/profile"
)

type UpdateBasicInfoRequest struct {
	Bio   *string `json:"bio"`
	Phone *string `json:"phone"`
}

type UpdateLocationRequest struct {
	Region *string `json:"region"`
	City   *string `json:"city"`
	Town   *string `json:"town"`
	Street *string `json:"street"`
}

type UpdateSkillsRequest struct {
	Skills []string `json:"skills" binding:"required"`
}

type MediaFileRequest struct {
	URI      string `json:"uri" binding:"required"`
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (r MediaFileRequest) ToDomain() onboarding.MediaFile {
	return onboarding.MediaFile{
		URI:      r.URI,
		MimeType: r.MimeType,
		FileName: r.FileName,
		Width:    r.Width,
		Height:   r.Height,
	}
}

type GoToStepRequest struct {
	Step int `json:"step" binding:"required"`
}

// RecordDTO is the wire shape of the onboarding record. Transient state
// (current step, errors) is included so the client can render without a
// second round trip.
type RecordDTO struct {
	Bio          string            `json:"bio"`
	Phone        string            `json:"phone"`
	Location     LocationDTO       `json:"location"`
	Skills       []string          `json:"skills"`
	ProfileImage MediaFileDTO      `json:"profileImage"`
	IDCard       IDCardDTO         `json:"idCard"`
	CurrentStep  int               `json:"currentStep"`
	TotalSteps   int               `json:"totalSteps"`
	IsSubmitting bool              `json:"isSubmitting"`
	Errors       map[string]string `json:"errors"`
}

type LocationDTO struct {
	Region string `json:"region"`
	City   string `json:"city"`
	Town   string `json:"town,omitempty"`
	Street string `json:"street,omitempty"`
}

type MediaFileDTO struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

type IDCardDTO struct {
	MediaFileDTO
	Front string `json:"front,omitempty"`
	Back  string `json:"back,omitempty"`
}

func ToRecordDTO(r onboarding.Record) RecordDTO {
	return RecordDTO{
		Bio:   r.Bio,
		Phone: r.Phone,
		Location: LocationDTO{
			Region: r.Location.Region,
			City:   r.Location.City,
			Town:   r.Location.Town,
			Street: r.Location.Street,
		},
		Skills:       r.Skills,
		ProfileImage: toMediaFileDTO(r.ProfileImage),
		IDCard: IDCardDTO{
			MediaFileDTO: toMediaFileDTO(r.IDCard.MediaFile),
			Front:        r.IDCard.Front,
			Back:         r.IDCard.Back,
		},
		CurrentStep:  r.CurrentStep,
		TotalSteps:   onboarding.TotalSteps,
		IsSubmitting: r.IsSubmitting,
		Errors:       r.Errors,
	}
}

func toMediaFileDTO(f onboarding.MediaFile) MediaFileDTO {
	return MediaFileDTO{
		URI:      f.URI,
		MimeType: f.MimeType,
		FileName: f.FileName,
		Width:    f.Width,
		Height:   f.Height,
	}
}

type ProfileDTO struct {
	WorkerID     string      `json:"workerId"`
	Bio          string      `json:"bio"`
	Phone        string      `json:"phone"`
	Location     LocationDTO `json:"location"`
	Skills       []string    `json:"skills"`
	ProfileImage string      `json:"profileImage,omitempty"`
	IDCardURL    string      `json:"idCard,omitempty"`
	Verified     bool        `json:"verified"`
}

func ToProfileDTO(p *profile.TaskerProfile) ProfileDTO {
	return ProfileDTO{
		WorkerID: p.WorkerID.String(),
		Bio:      p.Bio,
		Phone:    p.Phone,
		Location: LocationDTO{
			Region: p.Location.Region,
			City:   p.Location.City,
			Town:   p.Location.Town,
			Street: p.Location.Street,
		},
		Skills:       p.Skills,
		ProfileImage: p.ProfileImage,
		IDCardURL:    p.IDCardURL,
		Verified:     p.Verified,
	}
}
