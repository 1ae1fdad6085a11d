// internal/store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/model"
)

const (
	developersCollection   = "developers"
	repositoriesCollection = "repositories"
)

// developerDoc adds the lower-cased lookup key to a stored profile.
type developerDoc struct {
	UsernameKey     string `bson:"usernameKey"`
	model.Developer `bson:",inline"`
}

type repositoryDoc struct {
	OwnerKey         string `bson:"ownerKey"`
	model.Repository `bson:",inline"`
}

// Mongo is the Store backed by two MongoDB collections.
type Mongo struct {
	client       *mongo.Client
	developers   *mongo.Collection
	repositories *mongo.Collection
}

var _ Store = (*Mongo)(nil)

// NewMongo connects to uri and ensures the unique indexes exist.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:       client,
		developers:   db.Collection(developersCollection),
		repositories: db.Collection(repositoriesCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.developers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "usernameKey", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "xpScore", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create developer indexes: %w", err)
	}
	_, err = m.repositories.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "githubRepoId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerKey", Value: 1}, {Key: "stars", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create repository indexes: %w", err)
	}
	return nil
}

func (m *Mongo) GetDeveloper(ctx context.Context, username string) (*model.Developer, error) {
	var doc developerDoc
	err := m.developers.FindOne(ctx, bson.M{"usernameKey": strings.ToLower(username)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: developer %s", custom_errors.ErrNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	dev := doc.Developer
	normalize(&dev)
	return &dev, nil
}

func (m *Mongo) UpsertDeveloper(ctx context.Context, dev *model.Developer) error {
	key := strings.ToLower(dev.Username)
	doc := developerDoc{UsernameKey: key, Developer: *dev}
	normalize(&doc.Developer)
	_, err := m.developers.ReplaceOne(ctx, bson.M{"usernameKey": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) CountDevelopers(ctx context.Context) (int64, error) {
	return m.developers.CountDocuments(ctx, bson.D{})
}

func (m *Mongo) ListDevelopers(ctx context.Context, offset, limit int) ([]model.Developer, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "xpScore", Value: -1}, {Key: "usernameKey", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := m.developers.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []developerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	devs := make([]model.Developer, 0, len(docs))
	for _, doc := range docs {
		normalize(&doc.Developer)
		devs = append(devs, doc.Developer)
	}
	return devs, nil
}

func (m *Mongo) CountDevelopersAbove(ctx context.Context, score int) (int64, error) {
	return m.developers.CountDocuments(ctx, bson.M{"xpScore": bson.M{"$gt": score}})
}

func (m *Mongo) ListScores(ctx context.Context) ([]int, error) {
	cursor, err := m.developers.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"xpScore": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Score int `bson:"xpScore"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	scores := make([]int, len(rows))
	for i, r := range rows {
		scores[i] = r.Score
	}
	return scores, nil
}

func (m *Mongo) UpsertRepository(ctx context.Context, repo *model.Repository) error {
	doc := repositoryDoc{OwnerKey: strings.ToLower(repo.OwnerUsername), Repository: *repo}
	_, err := m.repositories.ReplaceOne(ctx, bson.M{"githubRepoId": repo.GithubRepoID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) ListTopRepositories(ctx context.Context, owner string, limit int) ([]model.Repository, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "stars", Value: -1}, {Key: "githubRepoId", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := m.repositories.Find(ctx, bson.M{"ownerKey": strings.ToLower(owner)}, opts)
	if err != nil {
		return nil, err
	}

	var docs []repositoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	repos := make([]model.Repository, 0, len(docs))
	for _, doc := range docs {
		repos = append(repos, doc.Repository)
	}
	return repos, nil
}

func (m *Mongo) PruneRepositories(ctx context.Context, owner string, keep []int64) (int64, error) {
	res, err := m.repositories.DeleteMany(ctx, bson.M{
		"ownerKey":     strings.ToLower(owner),
		"githubRepoId": bson.M{"$nin": nonNil(keep)},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
