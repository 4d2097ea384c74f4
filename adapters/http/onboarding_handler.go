package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	onboardingUC "github.com/worklinkgh/tasker-onboarding/internal/application/usecase/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

type OnboardingHandler struct {
	resumeUseCase *onboardingUC.ResumeUseCase
	stepsUseCase  *onboardingUC.StepsUseCase
	submitUseCase *onboardingUC.SubmitUseCase
	logger        logger.Logger
}

func NewOnboardingHandler(
	resume *onboardingUC.ResumeUseCase,
	steps *onboardingUC.StepsUseCase,
	submit *onboardingUC.SubmitUseCase,
	log logger.Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		resumeUseCase: resume,
		stepsUseCase:  steps,
		submitUseCase: submit,
		logger:        log,
	}
}

// GetDraft rehydrates and returns the worker's current record. The client
// calls it once on app start to resume an interrupted flow.
func (h *OnboardingHandler) GetDraft(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	rec, err := h.resumeUseCase.Execute(c.Request.Context(), workerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) UpdateBasicInfo(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	var req UpdateBasicInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for basic info", err))
		return
	}

	rec, err := h.stepsUseCase.ExecuteUpdateBasicInfo(c.Request.Context(), workerID, onboardingUC.UpdateBasicInfoInput{
		Bio:   req.Bio,
		Phone: req.Phone,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) UpdateLocation(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for location", err))
		return
	}

	rec, err := h.stepsUseCase.ExecuteUpdateLocation(c.Request.Context(), workerID, onboardingUC.UpdateLocationInput{
		Region: req.Region,
		City:   req.City,
		Town:   req.Town,
		Street: req.Street,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) UpdateSkills(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	var req UpdateSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for skills", err))
		return
	}

	rec, err := h.stepsUseCase.ExecuteUpdateSkills(c.Request.Context(), workerID, req.Skills)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) UpdateProfileImage(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	var req MediaFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile image", err))
		return
	}

	rec, err := h.stepsUseCase.ExecuteUpdateProfileImage(c.Request.Context(), workerID, req.ToDomain())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) UpdateIDCard(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	var req MediaFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for identity document", err))
		return
	}

	rec, err := h.stepsUseCase.ExecuteUpdateIDCard(c.Request.Context(), workerID, req.ToDomain())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) NextStep(c *gin.Context) {
	h.navigate(c, func(workerID uuid.UUID) (onboarding.Record, bool, error) {
		return h.stepsUseCase.ExecuteNext(c.Request.Context(), workerID)
	})
}

func (h *OnboardingHandler) PreviousStep(c *gin.Context) {
	h.navigate(c, func(workerID uuid.UUID) (onboarding.Record, bool, error) {
		return h.stepsUseCase.ExecutePrevious(c.Request.Context(), workerID)
	})
}

func (h *OnboardingHandler) GoToStep(c *gin.Context) {
	var req GoToStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for step navigation", err))
		return
	}
	h.navigate(c, func(workerID uuid.UUID) (onboarding.Record, bool, error) {
		return h.stepsUseCase.ExecuteGoToStep(c.Request.Context(), workerID, req.Step)
	})
}

// navigate runs one navigation action. A rejected move (step out of range)
// comes back as 409 with the unchanged record so the client can resync.
func (h *OnboardingHandler) navigate(c *gin.Context, fn func(uuid.UUID) (onboarding.Record, bool, error)) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	rec, moved, err := fn(workerID)
	if err != nil {
		c.Error(err)
		return
	}
	if !moved {
		c.JSON(http.StatusConflict, gin.H{"error": "step out of range", "record": ToRecordDTO(rec)})
		return
	}
	c.JSON(http.StatusOK, ToRecordDTO(rec))
}

func (h *OnboardingHandler) Validate(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	errs, err := h.stepsUseCase.ExecuteValidate(c.Request.Context(), workerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs})
}

func (h *OnboardingHandler) Submit(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	p, err := h.submitUseCase.Execute(c.Request.Context(), workerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(p))
}

// Abandon is the explicit user-initiated reset.
func (h *OnboardingHandler) Abandon(c *gin.Context) {
	workerID, ok := GetWorkerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("workerID not found in context"))
		return
	}

	if err := h.stepsUseCase.ExecuteAbandon(c.Request.Context(), workerID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
