package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

// AdminService is the back-office. Every method requires ROLE_ADMIN on the
// session token; the API authorizes again on its side.
type AdminService struct {
	products clients.ProductClient
	orders   clients.OrderClient
	users    clients.UserClient
	images   clients.ImageClient
	logger   *logging.Logger
}

func NewAdminService(products clients.ProductClient, orders clients.OrderClient, users clients.UserClient, images clients.ImageClient) *AdminService {
	return &AdminService{
		products: products,
		orders:   orders,
		users:    users,
		images:   images,
		logger:   logging.New("admin-service"),
	}
}

// RequireAdmin fails with ErrUnauthorized for anonymous sessions and
// ErrForbidden for users without the admin role.
func RequireAdmin(ctx context.Context) error {
	id := session.FromContext(ctx)
	if !id.Authenticated() {
		return apperrors.ErrUnauthorized
	}
	if !id.HasRole(models.RoleAdmin) {
		return apperrors.ErrForbidden
	}
	return nil
}

// DecodeProductForm decodes raw JSON into the form variant for t.
func DecodeProductForm(t models.ProductType, raw json.RawMessage) (models.ProductForm, error) {
	form := models.NewProductForm(t)
	if err := json.Unmarshal(raw, form); err != nil {
		return nil, apperrors.NewValidationError("body", "invalid product form")
	}
	// The variant, not the payload, decides the category.
	form.Fields().Type = models.NewProductForm(t).Fields().Type
	return form, nil
}

func (s *AdminService) CreateProducts(ctx context.Context, forms []models.ProductForm) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	if len(forms) == 0 {
		return "", apperrors.NewValidationError("products", "at least one product is required")
	}
	for _, form := range forms {
		if err := validateStruct(form); err != nil {
			return "", err
		}
	}

	s.logger.Info("Creating products", logging.Fields{"count": len(forms)})
	return s.products.CreateProducts(ctx, forms)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int64, form models.ProductForm) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	if err := validateStruct(form); err != nil {
		return "", err
	}

	s.logger.Info("Updating product", logging.Fields{"product_id": id})
	return s.products.UpdateProduct(ctx, id, form)
}

func (s *AdminService) DeleteProduct(ctx context.Context, t models.ProductType, id int64) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}

	s.logger.Info("Deleting product", logging.Fields{"product_id": id, "product_type": t})
	return s.products.DeleteProduct(ctx, t, id)
}

func (s *AdminService) Orders(ctx context.Context, filter models.OrderFilter, paging models.Paging) (*models.Page[models.Order], error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if filter.Status != "" {
		if err := ValidateOrderStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	return s.orders.ListOrders(ctx, filter, paging.Normalize())
}

func (s *AdminService) Order(ctx context.Context, id int64) (*models.Order, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, id)
}

// UpdateOrderStatus sets an order's status. Transition rules live on the
// server; only membership in the status set is checked here.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	if err := ValidateOrderStatus(status); err != nil {
		return "", err
	}

	s.logger.Info("Updating order status", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})
	return s.orders.UpdateOrderStatus(ctx, id, status)
}

func (s *AdminService) Users(ctx context.Context, filter models.UserFilter, paging models.Paging) (*models.Page[models.User], error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx, filter, paging.Normalize())
}

func (s *AdminService) User(ctx context.Context, id int64) (*models.User, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, id)
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	s.logger.Info("Deleting user", logging.Fields{"user_id": id})
	return s.users.DeleteUser(ctx, id)
}

func (s *AdminService) AddRole(ctx context.Context, userID, roleID int64) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	s.logger.Info("Granting role", logging.Fields{"user_id": userID, "role_id": roleID})
	return s.users.AddRole(ctx, userID, roleID)
}

func (s *AdminService) RemoveRole(ctx context.Context, userID, roleID int64) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	s.logger.Info("Revoking role", logging.Fields{"user_id": userID, "role_id": roleID})
	return s.users.RemoveRole(ctx, userID, roleID)
}

func (s *AdminService) Images(ctx context.Context) ([]models.Image, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.images.ListImages(ctx)
}

func (s *AdminService) Image(ctx context.Context, id int64) (*models.Image, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.images.GetImage(ctx, id)
}

func (s *AdminService) CreateImage(ctx context.Context, req *models.ImageRequest) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return s.images.CreateImage(ctx, req)
}

// AddImagesToProduct attaches several images to one product.
func (s *AdminService) AddImagesToProduct(ctx context.Context, productID int64, reqs []models.ImageRequest) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	if len(reqs) == 0 {
		return "", apperrors.NewValidationError("images", "at least one image is required")
	}
	for i := range reqs {
		reqs[i].ProductID = productID
		if err := validateStruct(&reqs[i]); err != nil {
			return "", err
		}
	}
	return s.images.AddToProduct(ctx, productID, reqs)
}

func (s *AdminService) UpdateImage(ctx context.Context, id int64, req *models.ImageRequest) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return s.images.UpdateImage(ctx, id, req)
}

func (s *AdminService) DeleteImage(ctx context.Context, id int64) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	return s.images.DeleteImage(ctx, id)
}

func (s *AdminService) DeleteProductImages(ctx context.Context, productID int64) (string, error) {
	if err := RequireAdmin(ctx); err != nil {
		return "", err
	}
	s.logger.Info("Deleting product images", logging.Fields{"product_id": productID})
	return s.images.DeleteByProduct(ctx, productID)
}

// ProductForms decodes a JSON array of forms of one category.
func ProductForms(t models.ProductType, raw []json.RawMessage) ([]models.ProductForm, error) {
	forms := make([]models.ProductForm, 0, len(raw))
	for i, item := range raw {
		form, err := DecodeProductForm(t, item)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}
