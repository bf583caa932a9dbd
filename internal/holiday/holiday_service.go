package holiday

import (
	"context"
	"time"

	holidayerrors "github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/holiday/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error

	// HolidaysBetween returns every public holiday date in [start, end]
	// inclusive, regardless of country code. The adjudicator uses it as a
	// date-exclusion set.
	HolidaysBetween(ctx context.Context, start, end time.Time) ([]time.Time, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		s.logger.Warn("create holiday validation failed", zap.String("date", req.Date))
		return HolidayResponse{}, holidayerrors.ErrInvalidDateFormat
	}

	h := &PublicHoliday{
		ID:          uuid.New(),
		Name:        req.Name,
		Date:        date,
		CountryCode: req.CountryCode,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Error("create holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.logger.Info("create holiday success",
		zap.String("holiday_id", h.ID.String()),
		zap.String("name", h.Name),
		zap.String("date", req.Date),
	)
	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context) ([]HolidayResponse, error) {
	holidays, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete holiday failed", zap.String("holiday_id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return holidayerrors.ErrHolidayNotFound
	}

	s.logger.Info("delete holiday success", zap.String("holiday_id", id))
	return nil
}

func (s *service) HolidaysBetween(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	holidays, err := s.repo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return dates, nil
}

func mapToResponse(h PublicHoliday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID.String(),
		Name:        h.Name,
		Date:        h.Date.Format(dateLayout),
		CountryCode: h.CountryCode,
	}
}
