package onboarding

// The onboarding flow walks a tasker through five data steps plus a final
// review before their profile goes live on the marketplace.
const (
	StepBasicInfo = 1
	StepLocation  = 2
	StepSkills    = 3
	StepPhoto     = 4
	StepIDCard    = 5
	StepReview    = 6

	TotalSteps = 6
)

const (
	defaultMimeType        = "image/jpeg"
	defaultProfileFileName = "profile.jpg"
	defaultIDCardFileName  = "id-card.jpg"
)

type Location struct {
	Region string `json:"region"`
	City   string `json:"city"`
	Town   string `json:"town,omitempty"`
	Street string `json:"street,omitempty"`
}

// MediaFile describes a file on the worker's device. URI is the local file
// handle the camera/photo-library layer hands over; Width/Height are only
// known when the picker reports them. A descriptor is either fully empty
// (URI == "") or carries a URI plus MimeType and FileName.
type MediaFile struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func (m MediaFile) IsEmpty() bool { return m.URI == "" }

// IDCard is the identity-document descriptor. Front and Back hold the remote
// URLs populated after the document upload succeeds.
type IDCard struct {
	MediaFile
	Front string `json:"front,omitempty"`
	Back  string `json:"back,omitempty"`
}

// Record is the canonical in-progress onboarding state for one worker.
// CurrentStep, IsSubmitting and Errors are deliberately excluded from the
// serialized draft payload: the step pointer is persisted under its own key
// (a legacy layout the mobile clients still read) and the other two are
// transient.
type Record struct {
	Bio          string            `json:"bio"`
	Phone        string            `json:"phone"`
	Location     Location          `json:"location"`
	Skills       []string          `json:"skills"`
	ProfileImage MediaFile         `json:"profileImage"`
	IDCard       IDCard            `json:"idCard"`
	CurrentStep  int               `json:"-"`
	IsSubmitting bool              `json:"-"`
	Errors       map[string]string `json:"-"`
}

func NewRecord() Record {
	return Record{
		Skills:      []string{},
		CurrentStep: StepBasicInfo,
		Errors:      map[string]string{},
	}
}

// clone returns a deep copy so Apply never aliases the caller's slices or
// maps.
func (r Record) clone() Record {
	out := r
	out.Skills = make([]string, len(r.Skills))
	copy(out.Skills, r.Skills)
	out.Errors = make(map[string]string, len(r.Errors))
	for k, v := range r.Errors {
		out.Errors[k] = v
	}
	return out
}

// normalizeProfileImage fills descriptor defaults for the profile photo.
func normalizeProfileImage(f MediaFile) MediaFile {
	if f.IsEmpty() {
		return MediaFile{}
	}
	if f.MimeType == "" {
		f.MimeType = defaultMimeType
	}
	if f.FileName == "" {
		f.FileName = defaultProfileFileName
	}
	return f
}

func normalizeIDCardFile(f MediaFile) MediaFile {
	if f.IsEmpty() {
		return MediaFile{}
	}
	if f.MimeType == "" {
		f.MimeType = defaultMimeType
	}
	if f.FileName == "" {
		f.FileName = defaultIDCardFileName
	}
	return f
}
