package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSURLPrefix is where GridFS files are streamed from.
const GridFSURLPrefix = "/files/"

// GridFSStore keeps uploads in the database's default GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
	files  *mongo.Collection
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, files: db.Collection("fs.files")}, nil
}

func (s *GridFSStore) Put(_ context.Context, category, filename, contentType string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"category":    cleanCategory(category),
		"contentType": contentType,
	})
	id, err := s.bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload: %w", err)
	}
	return GridFSURLPrefix + id.Hex(), nil
}

func (s *GridFSStore) Delete(_ context.Context, url string) error {
	id, err := primitive.ObjectIDFromHex(strings.TrimPrefix(url, GridFSURLPrefix))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err := s.bucket.Delete(id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}

func (s *GridFSStore) Stat(ctx context.Context, id string) (FileInfo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return FileInfo{}, ErrNotFound
	}
	var doc struct {
		Filename string `bson:"filename"`
		Length   int64  `bson:"length"`
		Metadata struct {
			ContentType string `bson:"contentType"`
		} `bson:"metadata"`
	}
	if err := s.files.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return FileInfo{}, ErrNotFound
		}
		return FileInfo{}, err
	}
	return FileInfo{Name: doc.Filename, ContentType: doc.Metadata.ContentType, Size: doc.Length}, nil
}

func (s *GridFSStore) Stream(_ context.Context, id string, w io.Writer) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if _, err := s.bucket.DownloadToStream(oid, w); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
