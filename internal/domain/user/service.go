package user

import "context"

// AdminService is the user management surface behind /api/admin/users.
type AdminService interface {
	List(ctx context.Context, principal Principal, query ListUserQuery) (ListUserResponse, error)
	Get(ctx context.Context, principal Principal, id string) (UserResponse, error)
	Create(ctx context.Context, principal Principal, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, principal Principal, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, principal Principal, id string) error
}
