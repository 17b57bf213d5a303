package persistence

import (
	"context"
	"fmt"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// snapshotCollection is the slice of *mongo.Collection the archive uses
type snapshotCollection interface {
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
}

// snapshotDocument is one archived record
type snapshotDocument struct {
	SnapshotDate string               `bson:"snapshot_date"`
	Platform     string               `bson:"platform"`
	PostID       string               `bson:"post_id"`
	RunID        string               `bson:"run_id"`
	Record       model.StandardRecord `bson:"record"`
	ArchivedAt   time.Time            `bson:"archived_at"`
}

// SnapshotArchiveMongo stores one document per (snapshot_date, platform, post_id)
type SnapshotArchiveMongo struct {
	collection snapshotCollection
}

func NewSnapshotArchiveMongo(client *mongo.Client, database, collection string) *SnapshotArchiveMongo {
	return &SnapshotArchiveMongo{collection: client.Database(database).Collection(collection)}
}

func (r *SnapshotArchiveMongo) Name() string { return "mongo" }

// Archive replaces or inserts one document per record
func (r *SnapshotArchiveMongo) Archive(ctx context.Context, snapshot *model.Snapshot) error {
	if r.collection == nil || snapshot == nil || len(snapshot.Records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	upserted := 0
	for _, rec := range snapshot.Records {
		filter := bson.D{
			{Key: "snapshot_date", Value: snapshot.Date},
			{Key: "platform", Value: rec.Platform},
			{Key: "post_id", Value: rec.PostID},
		}
		doc := snapshotDocument{
			SnapshotDate: snapshot.Date,
			Platform:     rec.Platform,
			PostID:       rec.PostID,
			RunID:        snapshot.RunID,
			Record:       rec,
			ArchivedAt:   now,
		}
		res, err := r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while archiving snapshot record")
			return fmt.Errorf("replace %s: %w", rec.PostID, err)
		}
		if res != nil && res.UpsertedCount > 0 {
			upserted++
		}
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"runId":    snapshot.RunID,
		"records":  len(snapshot.Records),
		"inserted": upserted,
	}).Info("Snapshot archived to MongoDB")
	return nil
}
