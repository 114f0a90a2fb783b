package directory

import "context"

type Repository interface {
	GetServiceByID(ctx context.Context, organizationID, serviceID int64) (*Service, error)
	GetResourceByID(ctx context.Context, organizationID, resourceID int64) (*Resource, error)
	GetLocationByID(ctx context.Context, organizationID, locationID int64) (*Location, error)
	GetUserByID(ctx context.Context, organizationID, userID int64) (*User, error)
}
