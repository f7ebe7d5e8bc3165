package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bistro-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names inside the bistro database.
const (
	collMenu     = "menu"
	collCart     = "cart"
	collUsers    = "users"
	collPayments = "payments"
)

// MongoStore keeps each record kind in its own collection of schemaless documents.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	menu     *mongo.Collection
	cart     *mongo.Collection
	payments *mongo.Collection
}

// OpenMongo connects with the Stable API v1 and ensures the unique email index
// that makes InsertUserIfAbsent atomic.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		users:    db.Collection(collUsers),
		menu:     db.Collection(collMenu),
		cart:     db.Collection(collCart),
		payments: db.Collection(collPayments),
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure users.email index: %w", err)
	}

	logger.Infof("connected to mongodb database %s", dbName)
	return s, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := findAll(ctx, s.users, bson.M{}, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return &u, nil
}

func (s *MongoStore) InsertUserIfAbsent(ctx context.Context, u *models.User) (models.InsertResult, bool, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.ID = ""

	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": u.Email},
		bson.M{"$setOnInsert": u},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// lost an upsert race against the unique index; the other writer created it
		return models.InsertResult{Acknowledged: true}, false, nil
	}
	if err != nil {
		return models.InsertResult{}, false, fmt.Errorf("insert user: %w", err)
	}
	if res.UpsertedCount == 0 {
		return models.InsertResult{Acknowledged: true}, false, nil
	}
	u.ID = idString(res.UpsertedID)
	return models.InsertResult{Acknowledged: true, InsertedID: u.ID}, true, nil
}

func (s *MongoStore) SetUserRole(ctx context.Context, id string, role models.UserRole) (models.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("set role on user %s: %w", id, err)
	}
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (s *MongoStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if err := findAll(ctx, s.menu, bson.M{}, &items); err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

func (s *MongoStore) InsertMenuItem(ctx context.Context, item *models.MenuItem) (models.InsertResult, error) {
	item.ID = ""
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	res, err := insertOne(ctx, s.menu, item)
	if err == nil {
		item.ID = res.InsertedID
	}
	return res, err
}

func (s *MongoStore) DeleteMenuItem(ctx context.Context, id string) (models.DeleteResult, error) {
	return deleteByID(ctx, s.menu, id)
}

func (s *MongoStore) ListCartByEmail(ctx context.Context, email string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := findAll(ctx, s.cart, bson.M{"userEmail": email}, &items); err != nil {
		return nil, fmt.Errorf("list cart for %s: %w", email, err)
	}
	return items, nil
}

func (s *MongoStore) InsertCartItem(ctx context.Context, item *models.CartItem) (models.InsertResult, error) {
	item.ID = ""
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	res, err := insertOne(ctx, s.cart, item)
	if err == nil {
		item.ID = res.InsertedID
	}
	return res, err
}

func (s *MongoStore) DeleteCartItem(ctx context.Context, id string) (models.DeleteResult, error) {
	return deleteByID(ctx, s.cart, id)
}

func (s *MongoStore) InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error) {
	p.ID = ""
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	res, err := insertOne(ctx, s.payments, p)
	if err == nil {
		p.ID = res.InsertedID
	}
	return res, err
}

// Ping issues the same admin ping the service has always used to confirm the deployment is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any) (models.InsertResult, error) {
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}

// deleteByID treats an id that is not a valid ObjectID as matching nothing.
func deleteByID(ctx context.Context, coll *mongo.Collection, id string) (models.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete from %s %s: %w", coll.Name(), id, err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
