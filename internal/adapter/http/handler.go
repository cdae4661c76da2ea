package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/devportal/internal/app"
	"github.com/neomorfeo/devportal/internal/domain"
)

// VendorResponse is the API representation of a vendor.
type VendorResponse struct {
	ID         string `json:"id" doc:"Vendor identifier"`
	Name       string `json:"name" doc:"Display name"`
	Address    string `json:"address" doc:"Postal address"`
	Email      string `json:"email" doc:"Contact email"`
	IsApproved bool   `json:"is_approved" doc:"Whether an administrator approved the vendor"`
	CreatedBy  string `json:"created_by,omitempty" doc:"Email of the user who signed the vendor up"`
}

func toVendorResponse(v domain.Vendor) VendorResponse {
	return VendorResponse{
		ID:         v.ID,
		Name:       v.Name,
		Address:    v.Address,
		Email:      v.Email,
		IsApproved: v.IsApproved,
		CreatedBy:  v.CreatedBy,
	}
}

// UserResponse is the API representation of the calling user.
type UserResponse struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	IsAdmin bool     `json:"is_admin"`
	Vendors []string `json:"vendors"`
}

func toUserResponse(u domain.User) UserResponse {
	vendors := u.Vendors
	if vendors == nil {
		vendors = []string{}
	}
	return UserResponse{Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin, Vendors: vendors}
}

// --- Vendors ---

type ListVendorsInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Pagination offset"`
	Limit  int `query:"limit" minimum:"0" maximum:"1000" default:"1000" doc:"Max results"`
}

type ListVendorsOutput struct {
	Body []VendorResponse
}

type VendorPathInput struct {
	Vendor string `path:"vendor" maxLength:"32" pattern:"^[A-Za-z0-9_-]+$" doc:"Vendor ID"`
}

type GetVendorOutput struct {
	Body VendorResponse
}

type SignUpInput struct {
	Body struct {
		Name    string `json:"name" minLength:"1" maxLength:"255" doc:"Vendor name"`
		Address string `json:"address,omitempty" maxLength:"1024" doc:"Postal address"`
		Email   string `json:"email" format:"email" doc:"Vendor contact email"`
	}
}

type SignUpOutput struct {
	Body struct {
		ID string `json:"id" doc:"Generated vendor identifier"`
	}
}

// --- Membership ---

type MemberPathInput struct {
	Vendor string `path:"vendor" maxLength:"32" pattern:"^[A-Za-z0-9_-]+$" doc:"Vendor ID"`
	Email  string `path:"email" format:"email" maxLength:"254" doc:"Email of the user"`
}

type AcceptInput struct {
	Vendor string `path:"vendor" maxLength:"32" pattern:"^[A-Za-z0-9_-]+$" doc:"Vendor ID"`
	Email  string `path:"email" format:"email" maxLength:"254" doc:"Invited email"`
	Code   string `path:"code" maxLength:"64" pattern:"^[A-Za-z0-9-]+$" doc:"Invitation code"`
}

// --- Admin ---

type AdminCreateVendorInput struct {
	Body struct {
		ID      string `json:"id" minLength:"1" maxLength:"32" pattern:"^[A-Za-z0-9_-]+$" doc:"Vendor identifier"`
		Name    string `json:"name" minLength:"1" maxLength:"255" doc:"Vendor name"`
		Address string `json:"address,omitempty" maxLength:"1024" doc:"Postal address"`
		Email   string `json:"email,omitempty" doc:"Vendor contact email"`
	}
}

type ApproveVendorInput struct {
	Vendor string `path:"vendor" maxLength:"32" pattern:"^[A-Za-z0-9_-]+$" doc:"Vendor ID"`
	Body   *struct {
		NewID string `json:"new_id,omitempty" maxLength:"32" pattern:"^[A-Za-z0-9_-]*$" doc:"Permanent identifier to give the vendor"`
	} `required:"false"`
}

// --- Me ---

type MeOutput struct {
	Body UserResponse
}

type RegisterInput struct {
	Body struct {
		Name string `json:"name,omitempty" maxLength:"255" doc:"Display name, defaults to the token's name claim"`
	}
}

// Handlers holds what the routes need. Limiter may be nil to leave the
// invitation link unthrottled.
type Handlers struct {
	Service  *app.VendorService
	Accounts Accounts
	Limiter  *RateLimiter
}

// Register adds all vendor API routes to the Huma API.
func Register(api huma.API, h Handlers) {
	auth := NewAuthenticator(api, h.Accounts)
	user := huma.Middlewares{auth.RequireUser}
	admin := huma.Middlewares{auth.RequireAdmin}
	security := []map[string][]string{{bearerScheme: {}}}

	var limited huma.Middlewares
	if h.Limiter != nil {
		limited = huma.Middlewares{h.Limiter.Middleware(api)}
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-vendors",
		Method:      http.MethodGet,
		Path:        "/api/v1/vendors",
		Summary:     "List vendors",
		Tags:        []string{"Vendors"},
		Security:    security,
		Middlewares: user,
	}, func(ctx context.Context, input *ListVendorsInput) (*ListVendorsOutput, error) {
		vendors, err := h.Service.List(ctx, input.Offset, input.Limit)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]VendorResponse, len(vendors))
		for i, v := range vendors {
			resp[i] = toVendorResponse(v)
		}
		return &ListVendorsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-vendor",
		Method:      http.MethodGet,
		Path:        "/api/v1/vendors/{vendor}",
		Summary:     "Get a vendor by ID",
		Tags:        []string{"Vendors"},
		Security:    security,
		Middlewares: user,
	}, func(ctx context.Context, input *VendorPathInput) (*GetVendorOutput, error) {
		vendor, err := h.Service.Get(ctx, input.Vendor)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &GetVendorOutput{Body: toVendorResponse(vendor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "sign-up-vendor",
		Method:        http.MethodPost,
		Path:          "/api/v1/vendors",
		Summary:       "Sign up a new vendor for approval",
		Tags:          []string{"Vendors"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
		Middlewares:   user,
	}, func(ctx context.Context, input *SignUpInput) (*SignUpOutput, error) {
		id, err := h.Service.SignUp(ctx, currentUser(ctx), input.Body.Name, input.Body.Address, input.Body.Email)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		out := &SignUpOutput{}
		out.Body.ID = id
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "join-vendor",
		Method:        http.MethodPost,
		Path:          "/api/v1/vendors/{vendor}/users",
		Summary:       "Join a vendor, or ask an administrator to let you in",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
		Middlewares:   user,
	}, func(ctx context.Context, input *VendorPathInput) (*struct{}, error) {
		if err := h.Service.RequestJoin(ctx, currentUser(ctx), input.Vendor); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "invite-user",
		Method:        http.MethodPost,
		Path:          "/api/v1/vendors/{vendor}/invitations/{email}",
		Summary:       "Invite a user to the vendor",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
		Middlewares:   user,
	}, func(ctx context.Context, input *MemberPathInput) (*struct{}, error) {
		if err := h.Service.Invite(ctx, input.Vendor, input.Email, currentUser(ctx)); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "accept-invitation",
		Method:      http.MethodGet,
		Path:        "/api/v1/vendors/{vendor}/invitations/{email}/{code}",
		Summary:     "Accept an invitation from its emailed link",
		Tags:        []string{"Membership"},
		Middlewares: limited,
	}, func(ctx context.Context, input *AcceptInput) (*PageOutput, error) {
		joined, err := h.Service.AcceptInvitation(ctx, input.Vendor, input.Email, input.Code)
		return acceptPage(ctx, joined, err)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-user",
		Method:        http.MethodDelete,
		Path:          "/api/v1/vendors/{vendor}/users/{email}",
		Summary:       "Remove a user from the vendor",
		Tags:          []string{"Membership"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
		Middlewares:   user,
	}, func(ctx context.Context, input *MemberPathInput) (*struct{}, error) {
		if err := h.Service.RemoveUser(ctx, input.Vendor, input.Email, currentUser(ctx)); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "admin-create-vendor",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/vendors",
		Summary:       "Create an approved vendor",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
		Middlewares:   admin,
	}, func(ctx context.Context, input *AdminCreateVendorInput) (*struct{}, error) {
		vendor := domain.Vendor{
			ID:        input.Body.ID,
			Name:      input.Body.Name,
			Address:   input.Body.Address,
			Email:     input.Body.Email,
			CreatedBy: currentUser(ctx).Email,
		}
		if err := h.Service.Create(ctx, vendor, true); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "admin-approve-vendor",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/vendors/{vendor}/approve",
		Summary:       "Approve a vendor, optionally giving it a permanent ID",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
		Middlewares:   admin,
	}, func(ctx context.Context, input *ApproveVendorInput) (*struct{}, error) {
		var newID string
		if input.Body != nil {
			newID = input.Body.NewID
		}

		requester, err := h.Service.Approve(ctx, input.Vendor, newID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		if requester != "" {
			if err := h.Service.NotifyApproved(ctx, requester, newID); err != nil {
				return nil, toHumaError(ctx, err)
			}
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Get the calling user",
		Tags:        []string{"Account"},
		Security:    security,
		Middlewares: user,
	}, func(ctx context.Context, _ *struct{}) (*MeOutput, error) {
		return &MeOutput{Body: toUserResponse(currentUser(ctx))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "register-me",
		Method:      http.MethodPut,
		Path:        "/api/v1/me",
		Summary:     "Create or update the calling user's account",
		Tags:        []string{"Account"},
		Security:    security,
		Middlewares: huma.Middlewares{auth.RequireToken},
	}, func(ctx context.Context, input *RegisterInput) (*MeOutput, error) {
		id := currentIdentity(ctx)
		name := input.Body.Name
		if name == "" {
			name = id.Name
		}

		if err := h.Accounts.Register(ctx, id.Email, name); err != nil {
			return nil, toHumaError(ctx, err)
		}

		account, _, err := h.Accounts.FindUser(ctx, id.Email)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &MeOutput{Body: toUserResponse(account)}, nil
	})
}
