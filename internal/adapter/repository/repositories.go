package repository

import (
	"cloud.google.com/go/firestore"

	"roadrescue/internal/domain/repository"
)

// Repositories is the full set of stores the use cases depend on.
type Repositories struct {
	Users      repository.UserRepository
	Categories repository.CategoryRepository
	Requests   repository.RescueRequestRepository
	Chats      repository.ChatRepository
	Topics     repository.CommunityTopicRepository
	Tips       repository.CommunityTipRepository
}

func NewFirestoreRepositories(client *firestore.Client) *Repositories {
	return &Repositories{
		Users:      NewFirestoreUserRepository(client),
		Categories: NewFirestoreCategoryRepository(client),
		Requests:   NewFirestoreRescueRequestRepository(client),
		Chats:      NewFirestoreChatRepository(client),
		Topics:     NewFirestoreCommunityTopicRepository(client),
		Tips:       NewFirestoreCommunityTipRepository(client),
	}
}

// NewMemoryRepositories backs every store with process memory. Data is lost
// on restart.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Users:      NewMemoryUserRepository(),
		Categories: NewMemoryCategoryRepository(),
		Requests:   NewMemoryRescueRequestRepository(),
		Chats:      NewMemoryChatRepository(),
		Topics:     NewMemoryCommunityTopicRepository(),
		Tips:       NewMemoryCommunityTipRepository(),
	}
}
