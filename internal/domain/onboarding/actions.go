package onboarding

// Action is the closed set of mutations the state machine accepts. Every
// change to a Record flows through Apply with one of these variants; nothing
// else writes the record.
type Action interface {
	isAction()
}

// UpdateBasicInfo merges the supplied fields; nil pointers leave the current
// value untouched.
type UpdateBasicInfo struct {
	Bio   *string
	Phone *string
}

// UpdateLocation shallow-merges the supplied location fields.
type UpdateLocation struct {
	Region *string
	City   *string
	Town   *string
	Street *string
}

// UpdateSkills replaces the skill list wholesale. Duplicates are dropped,
// first occurrence wins, insertion order is preserved for display.
type UpdateSkills struct {
	Skills []string
}

// UpdateProfileImage replaces the profile photo descriptor.
type UpdateProfileImage struct {
	File MediaFile
}

// UpdateIDCard merges into the identity-document descriptor. Front/Back are
// only set by the submission pipeline after upload.
type UpdateIDCard struct {
	File  MediaFile
	Front *string
	Back  *string
}

type GoToNextStep struct{}

type GoToPreviousStep struct{}

type GoToStep struct {
	Step int
}

// SetErrors replaces the error map wholesale (not merged).
type SetErrors struct {
	Errors map[string]string
}

type ClearErrors struct{}

type SetSubmitting struct {
	Submitting bool
}

// Reset restores every field to its default value.
type Reset struct{}

func (UpdateBasicInfo) isAction()    {}
func (UpdateLocation) isAction()     {}
func (UpdateSkills) isAction()       {}
func (UpdateProfileImage) isAction() {}
func (UpdateIDCard) isAction()       {}
func (GoToNextStep) isAction()       {}
func (GoToPreviousStep) isAction()   {}
func (GoToStep) isAction()           {}
func (SetErrors) isAction()          {}
func (ClearErrors) isAction()        {}
func (SetSubmitting) isAction()      {}
func (Reset) isAction()              {}

// Apply is the pure transition function. It returns the next record and
// whether the action took effect; rejected navigation (step out of range)
// returns the input record unchanged with ok == false. Apply never performs
// I/O, which keeps the whole transition table unit-testable.
func Apply(r Record, a Action) (Record, bool) {
	next := r.clone()

	switch act := a.(type) {
	case UpdateBasicInfo:
		if act.Bio != nil {
			next.Bio = *act.Bio
		}
		if act.Phone != nil {
			next.Phone = *act.Phone
		}
		delete(next.Errors, FieldBio)
		delete(next.Errors, FieldPhone)

	case UpdateLocation:
		if act.Region != nil {
			next.Location.Region = *act.Region
		}
		if act.City != nil {
			next.Location.City = *act.City
		}
		if act.Town != nil {
			next.Location.Town = *act.Town
		}
		if act.Street != nil {
			next.Location.Street = *act.Street
		}
		delete(next.Errors, FieldRegion)
		delete(next.Errors, FieldCity)

	case UpdateSkills:
		next.Skills = dedupeSkills(act.Skills)
		delete(next.Errors, FieldSkills)

	case UpdateProfileImage:
		next.ProfileImage = normalizeProfileImage(act.File)

	case UpdateIDCard:
		if !act.File.IsEmpty() {
			next.IDCard.MediaFile = normalizeIDCardFile(act.File)
		}
		if act.Front != nil {
			next.IDCard.Front = *act.Front
		}
		if act.Back != nil {
			next.IDCard.Back = *act.Back
		}

	case GoToNextStep:
		if r.CurrentStep >= TotalSteps {
			return r, false
		}
		next.Errors = map[string]string{}
		next.CurrentStep = r.CurrentStep + 1

	case GoToPreviousStep:
		if r.CurrentStep <= 1 {
			return r, false
		}
		next.Errors = map[string]string{}
		next.CurrentStep = r.CurrentStep - 1

	case GoToStep:
		if act.Step < 1 || act.Step > TotalSteps {
			return r, false
		}
		next.Errors = map[string]string{}
		next.CurrentStep = act.Step

	case SetErrors:
		next.Errors = make(map[string]string, len(act.Errors))
		for k, v := range act.Errors {
			next.Errors[k] = v
		}

	case ClearErrors:
		next.Errors = map[string]string{}

	case SetSubmitting:
		// Starting a submission is compare-and-set: when a submission is
		// already in flight the action is rejected, so two concurrent
		// submitters cannot both claim the flag.
		if act.Submitting && r.IsSubmitting {
			return r, false
		}
		next.IsSubmitting = act.Submitting

	case Reset:
		return NewRecord(), true

	default:
		return r, false
	}

	return next, true
}

func dedupeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
