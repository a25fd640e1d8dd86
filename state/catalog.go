package state

import (
	"context"

	"rentadm/api"
)

// catalog is the shared shape of the building, room and tenant slices: a
// paged list plus create and update calls that may carry one image.
type catalog[T, In any] struct {
	*Collection[T]

	singular string
	plural   string

	list   func(context.Context, api.ListQuery) (api.Page[T], error)
	get    func(context.Context, int64) (T, error)
	create func(context.Context, In, *api.File) (T, error)
	update func(context.Context, int64, In, *api.File) (T, error)
	del    func(context.Context, int64) error
}

func (s *catalog[T, In]) Fetch(ctx context.Context, q api.ListQuery) error {
	return track(s.Collection, "failed to fetch "+s.plural, func() error {
		page, err := s.list(ctx, q)
		if err != nil {
			return err
		}
		s.applyPage(page)
		return nil
	})
}

func (s *catalog[T, In]) FetchByID(ctx context.Context, id int64) (T, error) {
	var item T
	err := track(s.Collection, "failed to fetch "+s.singular+" details", func() error {
		got, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		s.merge(got)
		item = got
		return nil
	})
	return item, err
}

func (s *catalog[T, In]) Create(ctx context.Context, input In, image *api.File) (T, error) {
	var item T
	err := track(s.Collection, "failed to create "+s.singular, func() error {
		created, err := s.create(ctx, input, image)
		if err != nil {
			return err
		}
		s.add(created)
		item = created
		return nil
	})
	return item, err
}

func (s *catalog[T, In]) Update(ctx context.Context, id int64, input In, image *api.File) (T, error) {
	var item T
	err := track(s.Collection, "failed to update "+s.singular, func() error {
		updated, err := s.update(ctx, id, input, image)
		if err != nil {
			return err
		}
		s.merge(updated)
		item = updated
		return nil
	})
	return item, err
}

func (s *catalog[T, In]) Delete(ctx context.Context, id int64) error {
	return track(s.Collection, "failed to delete "+s.singular, func() error {
		if err := s.del(ctx, id); err != nil {
			return err
		}
		s.remove(id)
		return nil
	})
}

type BuildingService interface {
	ListBuildings(ctx context.Context, q api.ListQuery) (api.Page[api.Building], error)
	GetBuilding(ctx context.Context, id int64) (api.Building, error)
	CreateBuilding(ctx context.Context, input api.BuildingInput, image *api.File) (api.Building, error)
	UpdateBuilding(ctx context.Context, id int64, input api.BuildingInput, image *api.File) (api.Building, error)
	DeleteBuilding(ctx context.Context, id int64) error
}

type Buildings struct {
	catalog[api.Building, api.BuildingInput]
}

func NewBuildings(svc BuildingService) *Buildings {
	return &Buildings{catalog[api.Building, api.BuildingInput]{
		Collection: NewCollection(func(b api.Building) int64 { return b.ID }),
		singular:   "building",
		plural:     "buildings",
		list:       svc.ListBuildings,
		get:        svc.GetBuilding,
		create:     svc.CreateBuilding,
		update:     svc.UpdateBuilding,
		del:        svc.DeleteBuilding,
	}}
}

type RoomService interface {
	ListRooms(ctx context.Context, q api.ListQuery) (api.Page[api.Room], error)
	GetRoom(ctx context.Context, id int64) (api.Room, error)
	CreateRoom(ctx context.Context, input api.RoomInput, image *api.File) (api.Room, error)
	UpdateRoom(ctx context.Context, id int64, input api.RoomInput, image *api.File) (api.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
}

type Rooms struct {
	catalog[api.Room, api.RoomInput]
}

func NewRooms(svc RoomService) *Rooms {
	return &Rooms{catalog[api.Room, api.RoomInput]{
		Collection: NewCollection(func(r api.Room) int64 { return r.ID }),
		singular:   "room",
		plural:     "rooms",
		list:       svc.ListRooms,
		get:        svc.GetRoom,
		create:     svc.CreateRoom,
		update:     svc.UpdateRoom,
		del:        svc.DeleteRoom,
	}}
}

type TenantService interface {
	ListTenants(ctx context.Context, q api.ListQuery) (api.Page[api.Tenant], error)
	GetTenant(ctx context.Context, id int64) (api.Tenant, error)
	CreateTenant(ctx context.Context, input api.TenantInput, citizenIDImage *api.File) (api.Tenant, error)
	UpdateTenant(ctx context.Context, id int64, input api.TenantInput, citizenIDImage *api.File) (api.Tenant, error)
	DeleteTenant(ctx context.Context, id int64) error
}

type Tenants struct {
	catalog[api.Tenant, api.TenantInput]
}

func NewTenants(svc TenantService) *Tenants {
	return &Tenants{catalog[api.Tenant, api.TenantInput]{
		Collection: NewCollection(func(t api.Tenant) int64 { return t.ID }),
		singular:   "tenant",
		plural:     "tenants",
		list:       svc.ListTenants,
		get:        svc.GetTenant,
		create:     svc.CreateTenant,
		update:     svc.UpdateTenant,
		del:        svc.DeleteTenant,
	}}
}
