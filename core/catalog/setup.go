package catalog

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/user"
)

var ErrAlreadySetUp = errors.New("the site is already set up")

// owner fields of SetupRequest, by NewUser field
var ownerFields = map[string]string{
	"name":             "owner_name",
	"email":            "owner_email",
	"username":         "owner_email",
	"password":         "owner_password",
	"password_confirm": "owner_password_confirm",
}

// SetupService configures a fresh install: site settings plus the owner account.
type SetupService struct {
	settings   *Service[SiteSettings, *SiteSettings]
	userSvc    user.Service
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
}

func NewSetupService(
	settings *Service[SiteSettings, *SiteSettings],
	userSvc user.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *SetupService {
	return &SetupService{
		settings:   settings,
		userSvc:    userSvc,
		validate:   validate,
		translator: translator,
		logger:     logger,
	}
}

// IsSetUp reports whether site settings exist.
func (svc *SetupService) IsSetUp(ctx context.Context) (bool, error) {
	if _, err := svc.settings.Get(ctx, SettingsID); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "getting settings")
	}
	return true, nil
}

// Run validates the request, creates the owner then stores the settings.
// Returns ErrAlreadySetUp once settings exist.
func (svc *SetupService) Run(ctx context.Context, req SetupRequest) (SiteSettings, user.User, error) {
	done, err := svc.IsSetUp(ctx)
	if err != nil {
		return SiteSettings{}, user.User{}, err
	}
	if done {
		return SiteSettings{}, user.User{}, ErrAlreadySetUp
	}

	req.Clean()
	if err = svc.validate.Struct(&req); err != nil {
		return SiteSettings{}, user.User{}, core.TranslateValidationErrors(err, svc.translator)
	}
	settings := req.Settings()
	if err = svc.settings.Clean(&settings); err != nil {
		return SiteSettings{}, user.User{}, err
	}

	nu := user.NewUser{
		Name:            req.OwnerName,
		Email:           req.OwnerEmail,
		Password:        req.OwnerPassword,
		PasswordConfirm: req.OwnerPasswordConfirm,
		Roles:           []string{user.RoleAdminOwner},
	}
	if err = nu.Validate(ctx, svc.validate, svc.userSvc); err != nil {
		return SiteSettings{}, user.User{}, ownerErrors(core.TranslateValidationErrors(err, svc.translator))
	}
	owner, err := svc.userSvc.Create(ctx, nu)
	if err != nil {
		return SiteSettings{}, user.User{}, errors.Wrap(err, "creating owner")
	}

	settings, err = svc.settings.Save(ctx, "", settings)
	if err != nil {
		return SiteSettings{}, user.User{}, errors.Wrap(err, "saving settings")
	}
	svc.logger.Info("site set up by " + owner.Email)
	return settings, owner, nil
}

// ownerErrors renames NewUser field errors after the SetupRequest fields.
func ownerErrors(err error) error {
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	flds := make([]core.FieldError, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		if name, ok := ownerFields[f.Field]; ok {
			f.Field = name
		}
		flds = append(flds, f)
	}
	return core.NewValidationError(vErr.Err, flds...)
}
