package state

import (
	"context"

	"rentadm/api"
	"rentadm/workflow"
)

type IncidentService interface {
	ListIncidents(ctx context.Context, q api.ListQuery) (api.Page[api.Incident], error)
	ListIncidentsByBuilding(ctx context.Context, buildingID int64) ([]api.Incident, error)
	UpdateIncidentStatus(ctx context.Context, id int64, update api.IncidentStatusUpdate) (api.Incident, error)
	DeleteIncident(ctx context.Context, id int64) error
}

type Incidents struct {
	*Collection[api.Incident]

	svc IncidentService
}

func NewIncidents(svc IncidentService) *Incidents {
	return &Incidents{
		Collection: NewCollection(func(i api.Incident) int64 { return i.ID }),
		svc:        svc,
	}
}

func (s *Incidents) Fetch(ctx context.Context, q api.ListQuery) error {
	return track(s.Collection, "failed to fetch incidents", func() error {
		page, err := s.svc.ListIncidents(ctx, q)
		if err != nil {
			return err
		}
		s.applyPage(page)
		return nil
	})
}

func (s *Incidents) FetchByBuilding(ctx context.Context, buildingID int64) error {
	return track(s.Collection, "failed to fetch incidents", func() error {
		incidents, err := s.svc.ListIncidentsByBuilding(ctx, buildingID)
		if err != nil {
			return err
		}
		s.replace(incidents)
		return nil
	})
}

func (s *Incidents) UpdateStatus(ctx context.Context, id int64, update api.IncidentStatusUpdate) (api.Incident, error) {
	if err := workflow.ValidateIncidentUpdate(update); err != nil {
		return api.Incident{}, err
	}
	var incident api.Incident
	err := track(s.Collection, "failed to update incident status", func() error {
		updated, err := s.svc.UpdateIncidentStatus(ctx, id, update)
		if err != nil {
			return err
		}
		s.merge(updated)
		incident = updated
		return nil
	})
	return incident, err
}

func (s *Incidents) Delete(ctx context.Context, id int64) error {
	return track(s.Collection, "failed to delete incident", func() error {
		if err := s.svc.DeleteIncident(ctx, id); err != nil {
			return err
		}
		s.remove(id)
		return nil
	})
}
