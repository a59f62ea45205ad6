package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"roomadmin/internal/aggregation"
	"roomadmin/internal/events"
	"roomadmin/internal/listing"
	"roomadmin/internal/models"
)

var userFields = listing.Fields[models.User]{
	"id":    func(u models.User) any { return u.ID },
	"name":  func(u models.User) any { return u.Name },
	"email": func(u models.User) any { return u.Email },
}

type UserService struct {
	*core
}

func (s *UserService) List(ctx context.Context, q listing.Query) (listing.Page[models.User], error) {
	users, err := s.users(ctx)
	if err != nil {
		return listing.Page[models.User]{}, err
	}
	return applyQuery(users, userFields, q)
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, err
	}
	i := indexUser(users, id)
	if i < 0 {
		return models.User{}, notFound("user", id)
	}
	return users[i], nil
}

// Create registers a user under the id derived from the name.
func (s *UserService) Create(ctx context.Context, in UserInput) (models.User, error) {
	in.normalize()
	ie := newInputError()
	check(s.validate, &in, ie)
	if ie.fieldsCount() > 0 {
		return models.User{}, s.reject("users", ie)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, err
	}

	id, err := models.GenerateUserID(in.Name)
	if errors.Is(err, models.ErrNameTooShort) {
		ie.addError("name", err.Error())
	}
	if emailTaken(users, in.Email, "") {
		ie.addError("email", "is already registered")
	}
	if id != "" && indexUser(users, id) >= 0 {
		ie.addError("name", "produces an id that is already in use")
	}
	if ie.fieldsCount() > 0 {
		return models.User{}, s.reject("users", ie)
	}

	user := models.User{ID: id, Name: in.Name, Email: in.Email}
	if err := s.putUsers(ctx, append(users, user)); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Str("user_id", id).Msg("User created")
	s.committed("users", "create", events.UserCreated, user)
	return user, nil
}

// Update changes name and email. The id stays the one generated at creation.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (models.User, error) {
	in.normalize()
	ie := newInputError()
	check(s.validate, &in, ie)
	if ie.fieldsCount() > 0 {
		return models.User{}, s.reject("users", ie)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, err
	}
	i := indexUser(users, id)
	if i < 0 {
		return models.User{}, notFound("user", id)
	}
	if emailTaken(users, in.Email, id) {
		ie.addError("email", "is already registered")
		return models.User{}, s.reject("users", ie)
	}

	users[i].Name = in.Name
	users[i].Email = in.Email
	if err := s.putUsers(ctx, users); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Str("user_id", id).Msg("User updated")
	s.committed("users", "update", events.UserUpdated, users[i])
	return users[i], nil
}

// Delete removes a user. Their bookings are kept and show placeholders.
func (s *UserService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	i := indexUser(users, id)
	if i < 0 {
		return notFound("user", id)
	}
	removed := users[i]
	if err := s.putUsers(ctx, slices.Delete(users, i, i+1)); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("User deleted")
	s.committed("users", "delete", events.UserDeleted, removed)
	return nil
}

// Bookings lists the joined bookings of one user.
func (s *UserService) Bookings(ctx context.Context, id string) ([]models.BookingView, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	views, err := s.views(ctx)
	if err != nil {
		return nil, err
	}
	return aggregation.BookingsOfUser(views, id), nil
}

func (s *UserService) SuggestEmail(name string) string {
	return models.SuggestEmail(name)
}

func indexUser(users []models.User, id string) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
}

func emailTaken(users []models.User, email, exceptID string) bool {
	return slices.ContainsFunc(users, func(u models.User) bool {
		return u.ID != exceptID && strings.EqualFold(u.Email, email)
	})
}
