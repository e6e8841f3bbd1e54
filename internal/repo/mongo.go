package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-gin-blog/internal/domain"
)

// Documents keep _id as a string: generated ids are ObjectID hex, seeded ids stay as given.
type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	Bio          string    `bson:"bio,omitempty"`
	Avatar       string    `bson:"avatar,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d *userDoc) toDomain() domain.User {
	return domain.User{
		ID: d.ID, Name: d.Name, Email: d.Email, PasswordHash: d.PasswordHash,
		Role: domain.Role(d.Role), Bio: d.Bio, Avatar: d.Avatar,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func userToDoc(u *domain.User) userDoc {
	return userDoc{
		ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash,
		Role: string(u.Role), Bio: u.Bio, Avatar: u.Avatar,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

type postDoc struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Slug      string    `bson:"slug"`
	Excerpt   string    `bson:"excerpt"`
	Content   string    `bson:"content"`
	AuthorID  string    `bson:"authorId"`
	Published bool      `bson:"published"`
	Tags      []string  `bson:"tags"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *postDoc) toDomain() domain.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Post{
		ID: d.ID, Title: d.Title, Slug: d.Slug, Excerpt: d.Excerpt, Content: d.Content,
		AuthorID: d.AuthorID, Published: d.Published, Tags: tags,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func postToDoc(p *domain.Post) postDoc {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postDoc{
		ID: p.ID, Title: p.Title, Slug: p.Slug, Excerpt: p.Excerpt, Content: p.Content,
		AuthorID: p.AuthorID, Published: p.Published, Tags: tags,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

var newestFirstSort = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})

type MongoUserRepo struct{ coll *mongo.Collection }

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

var _ domain.UserRepository = (*MongoUserRepo)(nil)

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *MongoUserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.coll.InsertOne(ctx, userToDoc(u))
	return err
}

func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var d userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := d.toDomain()
	return &u, nil
}

func (r *MongoUserRepo) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, newestFirstSort)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *MongoUserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	filter := bson.M{"email": email}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoUserRepo) Update(ctx context.Context, u *domain.User) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, userToDoc(u))
	return err
}

func (r *MongoUserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type MongoPostRepo struct{ coll *mongo.Collection }

func NewMongoPostRepo(db *mongo.Database) *MongoPostRepo {
	return &MongoPostRepo{coll: db.Collection("posts")}
}

var _ domain.PostRepository = (*MongoPostRepo)(nil)

func (r *MongoPostRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	})
	return err
}

func (r *MongoPostRepo) Create(ctx context.Context, p *domain.Post) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.coll.InsertOne(ctx, postToDoc(p))
	return err
}

func (r *MongoPostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoPostRepo) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoPostRepo) findOne(ctx context.Context, filter bson.M) (*domain.Post, error) {
	var d postDoc
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := d.toDomain()
	return &p, nil
}

func (r *MongoPostRepo) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, error) {
	filter := bson.M{}
	if f.AuthorID != "" {
		filter["authorId"] = f.AuthorID
	}
	if f.Published != nil {
		filter["published"] = *f.Published
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	cur, err := r.coll.Find(ctx, filter, newestFirstSort)
	if err != nil {
		return nil, err
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *MongoPostRepo) TitleTaken(ctx context.Context, title, excludeID string) (bool, error) {
	filter := bson.M{"title": title}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoPostRepo) Update(ctx context.Context, p *domain.Post) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, postToDoc(p))
	return err
}

func (r *MongoPostRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
