package acadbond

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"

	"github.com/acadbond/acadbond/middleware/sessionware"
)

// APIControllerRoutes names the mounted paths.
type APIControllerRoutes struct {
	Register      string
	Login         string
	Logout        string
	VerifyEmail   string
	PasswordReset string
	Dashboard     string
	Profile       string
}

// APIController is the JSON surface over the auth core. It owns no state
// transitions itself; every mutation goes through a command handler.
type APIController struct {
	Logger        Logger
	Auth          *RouteAuthenticator
	Repo          RepositoryManager
	Register      *RegisterUserHandler
	VerifyEmail   *VerifyEmailHandler
	ResetInit     *InitializePasswordResetHandler
	ResetFinalize *FinalizePasswordResetHandler
	Routes        *APIControllerRoutes
}

// NewAPIController wires the controller with default routes.
func NewAPIController(auth *RouteAuthenticator, repo RepositoryManager) *APIController {
	return &APIController{
		Logger:        defLogger{},
		Auth:          auth,
		Repo:          repo,
		Register:      NewRegisterUserHandler(repo),
		VerifyEmail:   NewVerifyEmailHandler(repo),
		ResetInit:     NewInitializePasswordResetHandler(repo),
		ResetFinalize: NewFinalizePasswordResetHandler(repo),
		Routes: &APIControllerRoutes{
			Register:      "/auth/register",
			Login:         "/auth/login",
			Logout:        "/auth/logout",
			VerifyEmail:   "/auth/verify-email",
			PasswordReset: "/auth/password-reset",
			Dashboard:     "/dashboard",
			Profile:       "/profile",
		},
	}
}

// NewSessionValidator adapts the TokenService for the session middleware.
func NewSessionValidator(ts TokenService) sessionware.TokenValidator {
	return sessionValidator{ts: ts}
}

type sessionValidator struct {
	ts TokenService
}

func (v sessionValidator) Validate(raw string) (sessionware.AuthClaims, error) {
	claims, err := v.ts.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// DashboardRoleChecker gates the dashboard on the viewing capability rather
// than an exact role string. Plug it into the middleware's RoleChecker.
func DashboardRoleChecker(claims sessionware.AuthClaims, _ string) bool {
	return RoleCanViewDashboard(claims.Role())
}

// RegisterRoutes mounts the API. sessionRequired guards the authenticated
// reads; studentOnly additionally enforces the student role.
func (m *APIController) RegisterRoutes(app fiber.Router, sessionRequired, studentOnly fiber.Handler) {
	app.Post(m.Routes.Register, m.RegisterPost)
	app.Post(m.Routes.Login, m.LoginPost)
	app.Post(m.Routes.Logout, m.LogoutPost)
	app.Get(m.Routes.VerifyEmail, m.VerifyEmailGet)
	app.Post(m.Routes.PasswordReset, m.PasswordResetPost)
	app.Post(m.Routes.PasswordReset+"/:token", m.PasswordResetExecute)

	app.Get(m.Routes.Dashboard, studentOnly, m.DashboardGet)
	app.Get(m.Routes.Profile, sessionRequired, m.ProfileGet)
}

// LoginPayloadBody is the login form payload.
type LoginPayloadBody struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload.
func (r LoginPayloadBody) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (r LoginPayloadBody) GetIdentifier() string { return r.Email }
func (r LoginPayloadBody) GetPassword() string   { return r.Password }

var _ LoginPayload = LoginPayloadBody{}

// LoginPost authenticates and sets the session cookie. Unknown email and
// wrong password produce an identical response body.
func (m *APIController) LoginPost(c *fiber.Ctx) error {
	payload := LoginPayloadBody{}
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, "invalid request payload")
	}

	if err := m.Auth.Login(c, payload); err != nil {
		// flattened upstream; render uniformly regardless of cause
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   ErrInvalidCredentials.Message,
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// LogoutPost clears the session cookie.
func (m *APIController) LogoutPost(c *fiber.Ctx) error {
	m.Auth.Logout(c)
	return c.JSON(fiber.Map{"success": true})
}

// RegistrationPayload is the signup payload.
type RegistrationPayload struct {
	FirstName      string   `form:"first_name" json:"first_name"`
	LastName       string   `form:"last_name" json:"last_name"`
	Email          string   `form:"email" json:"email"`
	Password       string   `form:"password" json:"password"`
	UserType       string   `form:"user_type" json:"user_type"`
	CollegeName    string   `form:"college_name" json:"college_name"`
	GraduationYear int      `form:"graduation_year" json:"graduation_year"`
	CGPA           float64  `form:"cgpa" json:"cgpa"`
	Position       string   `form:"position" json:"position"`
	ScholarURL     string   `form:"scholar_url" json:"scholar_url"`
	Interests      []string `form:"interests" json:"interests"`
}

// Validate will validate the payload.
func (r RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.UserType, validation.Required, validation.In(RoleStudent, RoleProfessor)),
	)
}

// RegisterPost creates an unverified account and triggers the verification
// notification.
func (m *APIController) RegisterPost(c *fiber.Ctx) error {
	payload := RegistrationPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	msg := RegisterUserMessage{
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Email:          payload.Email,
		Password:       payload.Password,
		UserType:       payload.UserType,
		CollegeName:    payload.CollegeName,
		GraduationYear: payload.GraduationYear,
		CGPA:           payload.CGPA,
		Position:       payload.Position,
		ScholarURL:     payload.ScholarURL,
		Interests:      payload.Interests,
		UseHashid:      true,
	}

	if err := m.Register.Execute(c.Context(), msg); err != nil {
		return RenderError(c, m.Logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created. Check your inbox to verify your email.",
	})
}

// VerifyEmailGet consumes the one-time token from the verification link.
func (m *APIController) VerifyEmailGet(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "missing token")
	}

	if err := m.VerifyEmail.Execute(c.Context(), VerifyEmailMessage{Token: token}); err != nil {
		return RenderError(c, m.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// PasswordResetRequestPayload starts a reset.
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload.
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetPost answers success for every well-formed email so the
// endpoint cannot confirm account existence.
func (m *APIController) PasswordResetPost(c *fiber.Ctx) error {
	payload := PasswordResetRequestPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	msg := InitializePasswordResetMessage{Email: payload.Email}
	if err := m.ResetInit.Execute(c.Context(), msg); err != nil {
		m.Logger.Error("password reset initialize error", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Something went wrong.",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "If that account exists, a reset link is on its way.",
	})
}

// PasswordResetExecutePayload carries the new password.
type PasswordResetExecutePayload struct {
	Password string `form:"password" json:"password"`
}

// PasswordResetExecute consumes the token from the link and replaces the
// password.
func (m *APIController) PasswordResetExecute(c *fiber.Ctx) error {
	payload := PasswordResetExecutePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	msg := FinalizePasswordResetMessage{
		Token:    c.Params("token"),
		Password: payload.Password,
	}

	if err := m.ResetFinalize.Execute(c.Context(), msg); err != nil {
		return RenderError(c, m.Logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated. You can log in now.",
	})
}

// DashboardGet lists paper summaries for students.
func (m *APIController) DashboardGet(c *fiber.Ctx) error {
	summaries, err := m.Repo.ResearchPapers().ListSummaries(c.Context())
	if err != nil {
		return RenderError(c, m.Logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summaries,
	})
}

// ProfileGet returns the role-tagged profile of the session user.
func (m *APIController) ProfileGet(c *fiber.Ctx) error {
	claims, ok := sessionware.ClaimsFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "authentication required",
		})
	}

	user, err := m.Repo.Users().GetByIdentifier(c.Context(), claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "profile not found",
			})
		}
		return RenderError(c, m.Logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          user.ID,
			"email":       user.Email,
			"first_name":  user.FirstName,
			"last_name":   user.LastName,
			"user_type":   user.UserType,
			"is_verified": user.IsVerified,
			"profile":     ProfileOf(user),
		},
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
