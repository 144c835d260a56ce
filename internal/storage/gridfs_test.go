package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestGridFSStore_Stat(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".fs.files", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "filename", Value: "rx.pdf"},
			{Key: "length", Value: int64(1740)},
			{Key: "metadata", Value: bson.D{{Key: "contentType", Value: "application/pdf"}}},
		}))
		info, err := store.Stat(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, FileInfo{Name: "rx.pdf", ContentType: "application/pdf", Size: 1740}, info)
	})

	mt.Run("missing", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".fs.files", mtest.FirstBatch))
		_, err = store.Stat(context.Background(), id.Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("bad id", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		_, err = store.Stat(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestGridFSStore_StreamMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".fs.files", mtest.FirstBatch))
		var buf bytes.Buffer
		err = store.Stream(context.Background(), primitive.NewObjectID().Hex(), &buf)
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Zero(mt, buf.Len())
	})

	mt.Run("bad id", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		assert.ErrorIs(mt, store.Stream(context.Background(), "zz", &bytes.Buffer{}), ErrNotFound)
	})
}

func TestGridFSStore_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("already gone", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		assert.NoError(mt, store.Delete(context.Background(), GridFSURLPrefix+primitive.NewObjectID().Hex()))
	})

	mt.Run("foreign url", func(mt *mtest.T) {
		store, err := NewGridFSStore(mt.DB)
		require.NoError(mt, err)
		err = store.Delete(context.Background(), "/uploads/prescriptions/rx.pdf")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
