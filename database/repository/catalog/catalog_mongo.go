package catalogRepo

import (
	"context"
	"fmt"

	"wellvix/database"
	"wellvix/models"
	"wellvix/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCatalogRepo struct {
	serviceColl  *mongo.Collection
	providerColl *mongo.Collection
	clientColl   *mongo.Collection
}

// NewMongoCatalogRepo constructs read access to the "services",
// "providers" and "clients" collections.
func NewMongoCatalogRepo() Repository {
	db := database.DB()
	return &mongoCatalogRepo{
		serviceColl:  db.Collection("services"),
		providerColl: db.Collection("providers"),
		clientColl:   db.Collection("clients"),
	}
}

func (r *mongoCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	err := r.serviceColl.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service: %w", err)
	}
	return &s, nil
}

func (r *mongoCatalogRepo) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	var p models.Provider
	err := r.providerColl.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeNotFound, "provider %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}
	return &p, nil
}

func (r *mongoCatalogRepo) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	err := r.clientColl.FindOne(ctx, bson.M{"id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeNotFound, "client %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return &c, nil
}
