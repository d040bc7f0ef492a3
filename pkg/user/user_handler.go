package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samkassa/samkassa/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id        int    `json:"id"`
	Uid       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PartnerId *int   `json:"partnerId,omitempty"`
	Color     string `json:"color,omitempty"`
}

type InviteDTO struct {
	Code string `json:"code"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	if len(dto.Name) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Name is required"})
		return
	}
	if len(dto.Email) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Email is required"})
		return
	}

	created, err := h.userService.CreateUser(r.Context(), dtoToUser(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("Created user: %+v", created)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(current)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), dtoToUser(dto))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetAvailableUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(u))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetPartner godoc
// @Summary Get the current user's linked partner
// @Tags Partner
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 404 {object} rest.ErrorResponse "No partner linked"
// @Router /api/partner [get]
func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	partner, err := h.userService.GetPartner(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoPartner) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "No partner linked"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(partner)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) InvitePartner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	code, err := h.userService.InvitePartner(r.Context())
	if err != nil {
		if errors.Is(err, ErrAlreadyPartnered) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Already linked to a partner"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(InviteDTO{Code: code}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto InviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	if dto.Code == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invite code is required"})
		return
	}

	partner, err := h.userService.AcceptInvite(r.Context(), dto.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInviteNotFound):
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invite not found"})
		case errors.Is(err, ErrInviteAlreadyUsed), errors.Is(err, ErrAlreadyPartnered), errors.Is(err, ErrSelfInvite):
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(userToDTO(partner)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UnlinkPartner(w http.ResponseWriter, r *http.Request) {
	err := h.userService.UnlinkPartner(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoPartner) {
			http.Error(w, "No partner linked", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Id:        user.Id,
		Uid:       user.Uid,
		Name:      user.Name,
		Email:     user.Email,
		PartnerId: user.PartnerId,
		Color:     user.Color,
	}
}

func dtoToUser(dto UserDTO) User {
	return User{
		Id:    dto.Id,
		Uid:   dto.Uid,
		Name:  dto.Name,
		Email: dto.Email,
		Color: dto.Color,
	}
}
