package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"devpulse/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TextIndexName is the name of the weighted full-text index on articles.
// Queries here match keywords with regexes; the index serves ad-hoc $text
// queries run directly against the collection.
const TextIndexName = "article_text_index"

// Index option / key conflicts; an equivalent index already exists.
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// articleDocument is the persisted shape of domain.Article.
type articleDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	URL        string             `bson:"url"`
	Source     string             `bson:"source"`
	Author     string             `bson:"author,omitempty"`
	Score      int                `bson:"score"`
	Tags       []string           `bson:"tags"`
	Summary    string             `bson:"summary"`
	SourceIcon string             `bson:"sourceIcon,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d articleDocument) toDomain() domain.Article {
	return domain.Article{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		URL:        d.URL,
		Source:     d.Source,
		Author:     d.Author,
		Score:      d.Score,
		Tags:       tagsOrEmpty(d.Tags),
		Summary:    d.Summary,
		SourceIcon: d.SourceIcon,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

// Client wraps the MongoDB client and the articles collection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// EnsureIndexes creates the unique url index, the listing index and the
// weighted text index. Existing equivalent indexes are left alone.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("url_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "summary", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().
				SetName(TextIndexName).
				SetWeights(bson.D{
					{Key: "title", Value: 10},
					{Key: "summary", Value: 5},
					{Key: "tags", Value: 3},
				}),
		},
	}

	for _, model := range models {
		if _, err := c.collection.Indexes().CreateOne(ctx, model); err != nil {
			if isIndexConflict(err) {
				continue
			}
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func isIndexConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeIndexOptionsConflict || cmdErr.Code == codeIndexKeySpecsConflict
	}
	return false
}

// UpsertByURL writes the mutable fields with $set and the creation fields with
// $setOnInsert in a single atomic UpdateOne, so id and createdAt survive
// re-ingestion.
func (c *Client) UpsertByURL(ctx context.Context, url string, set domain.ArticleFields, onInsert domain.InsertFields) (domain.UpsertResult, error) {
	if c.collection == nil {
		return domain.UpsertResult{}, fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"url": url}
	update := bson.M{
		"$set": bson.M{
			"title":      set.Title,
			"source":     set.Source,
			"author":     set.Author,
			"score":      set.Score,
			"tags":       tagsOrEmpty(set.Tags),
			"summary":    set.Summary,
			"sourceIcon": set.SourceIcon,
			"updatedAt":  set.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": onInsert.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	res, err := c.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two concurrent upserts raced on the insert; the loser becomes an update.
		res, err = c.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("upsert article %q: %w", url, err)
	}
	return domain.UpsertResult{Inserted: res.UpsertedCount > 0}, nil
}

// FindMany returns the articles matching filter in the requested order.
func (c *Client) FindMany(ctx context.Context, filter domain.ArticleFilter, sort domain.SortOrder, skip, limit int) ([]domain.Article, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	opts := options.Find().SetSort(mongoSort(sort))
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := c.collection.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	return decodeArticles(ctx, cursor)
}

// CountMatching counts the articles matching filter.
func (c *Client) CountMatching(ctx context.Context, filter domain.ArticleFilter) (int64, error) {
	if c.collection == nil {
		return 0, fmt.Errorf("collection not initialized")
	}
	n, err := c.collection.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

// CountBySource groups every stored article by source with $group.
func (c *Client) CountBySource(ctx context.Context) (map[string]int64, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$source"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := c.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group articles by source: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Source string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode source count: %w", err)
		}
		counts[row.Source] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return counts, nil
}

// GetAllArticles fetches every stored article, oldest first.
func (c *Client) GetAllArticles(ctx context.Context) ([]domain.Article, error) {
	return c.FindMany(ctx, domain.ArticleFilter{}, domain.SortOldest, 0, 0)
}

func decodeArticles(ctx context.Context, cursor *mongo.Cursor) ([]domain.Article, error) {
	defer cursor.Close(ctx)

	articles := []domain.Article{}
	for cursor.Next(ctx) {
		var doc articleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode article: %w", err)
		}
		articles = append(articles, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return articles, nil
}

func mongoSort(sort domain.SortOrder) bson.D {
	if sort == domain.SortOldest {
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

// mongoFilter translates an ArticleFilter. Keywords become case-insensitive
// literal regexes OR'ed across every search field.
func mongoFilter(f domain.ArticleFilter) bson.M {
	filter := bson.M{}
	if sources := nonBlank(f.Sources); len(sources) > 0 {
		filter["source"] = bson.M{"$in": sources}
	}
	if !f.CreatedSince.IsZero() {
		filter["createdAt"] = bson.M{"$gte": f.CreatedSince}
	}

	var or bson.A
	for _, kw := range f.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re := primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		for _, field := range searchFields {
			or = append(or, bson.M{field: re})
		}
	}
	if len(or) > 0 {
		filter["$or"] = or
	}
	return filter
}
