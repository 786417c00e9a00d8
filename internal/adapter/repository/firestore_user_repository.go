package repository

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

// Create writes the user together with a user_emails/{email} marker doc in
// one transaction so two registrations cannot claim the same email.
func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = entity.NormalizeEmail(user.Email)

	userRef := r.client.Collection(usersCollection).Doc(user.ID)
	emailRef := r.client.Collection(userEmailsCollection).Doc(user.Email)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(emailRef)
		if err == nil {
			return errors.Conflict("Email already exists")
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(emailRef, map[string]interface{}{"userId": user.ID}); err != nil {
			return err
		}
		return tx.Create(userRef, user)
	})
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return err
		}
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError("User", "get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := r.client.Collection(usersCollection).Where("email", "==", entity.NormalizeEmail(email)).Limit(1)
	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query user by email", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error) {
	out := make(map[string]*entity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, r.client.Collection(usersCollection).Doc(id))
	}

	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errors.Internal("Failed to get users", err)
	}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}
		out[user.ID] = &user
	}
	return out, nil
}

// Update replaces the mutable profile fields. Email and role never change.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: user.Name},
		{Path: "phone", Value: user.Phone},
		{Path: "company", Value: user.Company},
		{Path: "updatedAt", Value: user.UpdatedAt},
	})
	if err != nil {
		return storeError("User", "update user", err)
	}
	return nil
}

func (r *firestoreUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return r.collect(ctx, r.client.Collection(usersCollection).Query)
}

func (r *firestoreUserRepository) ListCompanies(ctx context.Context, companyStatus entity.CompanyStatus) ([]*entity.User, error) {
	query := r.client.Collection(usersCollection).Where("role", "==", string(entity.RoleCompany))
	if companyStatus != "" {
		query = query.Where("company.status", "==", string(companyStatus))
	}
	return r.collect(ctx, query)
}

func (r *firestoreUserRepository) ListActiveCompaniesByCategory(ctx context.Context, categoryID string) ([]*entity.User, error) {
	query := r.client.Collection(usersCollection).
		Where("role", "==", string(entity.RoleCompany)).
		Where("company.status", "==", string(entity.CompanyActive)).
		Where("company.serviceCategoryIds", "array-contains", categoryID)
	return r.collect(ctx, query)
}

func (r *firestoreUserRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.User, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}
		users = append(users, &user)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}
