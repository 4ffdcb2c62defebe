package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

// UserController handles admin accounts.
type UserController struct {
	users *services.UserService
}

// NewUserController creates a UserController.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Index lists users.
func (u *UserController) Index(ctx *gin.Context) {
	page, err := u.users.List(ctx.Request.Context(), pageRequest(ctx))
	if err != nil {
		respondError(ctx, "list users", err)
		return
	}
	utils.Page(ctx, "admin/users/Index", UserIndexProps{Users: page})
}

// Create returns the empty form.
func (u *UserController) Create(ctx *gin.Context) {
	utils.Page(ctx, "admin/users/Create", UserFormProps{})
}

// Edit returns one user.
func (u *UserController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	user, err := u.users.Find(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "find user", err)
		return
	}
	utils.Page(ctx, "admin/users/Edit", UserFormProps{User: &user})
}

// Store creates a user.
func (u *UserController) Store(ctx *gin.Context) {
	var in services.UserInput
	if !bindForm(ctx, &in) {
		return
	}
	user, err := u.users.Create(ctx.Request.Context(), actor(ctx), in)
	if err != nil {
		respondError(ctx, "create user", err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "user created", user)
}

// Update changes a user; an empty password keeps the current one.
func (u *UserController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in services.UserInput
	if !bindForm(ctx, &in) {
		return
	}
	user, err := u.users.Update(ctx.Request.Context(), actor(ctx), id, in)
	if err != nil {
		respondError(ctx, "update user", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "user updated", user)
}

// Destroy deletes another user.
func (u *UserController) Destroy(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := u.users.Delete(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, "delete user", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "user deleted", nil)
}
