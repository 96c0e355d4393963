package payement

import (
	"fmt"
	"testing"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// paidSession fabrique une session Stripe payée dont les metadata portent
// la commande complète, comme CreateCheckoutSession les écrit.
func paidSession(sessionID string, userID, productID primitive.ObjectID) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            sessionID,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: map[string]string{
			"user_id": userID.Hex(),
			"orderItems": fmt.Sprintf(
				`[{"name":"Veste en laine","quantity":2,"image":"http://img/veste.jpg","price":199.99,"brand":"Vetra","product":"%s"}]`,
				productID.Hex()),
			"shippingAddress": `{"firstName":"Claire","lastName":"Moreau","address":"12 rue des Lilas","city":"Lyon","zipCode":"69003","state":"Rhône","country":"France","phone":"0600000000","email":"claire@vetra.shop"}`,
			"totalPrice":      "399.98",
			"shippingPrice":   "50",
		},
	}
}

func TestMaterializeOrder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("session déjà matérialisée", func(mt *mtest.T) {
		database.MongoDB = mt.DB

		existingID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "vetra.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: existingID},
			{Key: "user", Value: userID},
			{Key: "stripe_id", Value: "cs_test_123"},
			{Key: "status", Value: models.StatusPending},
			{Key: "totalPrice", Value: 120.0},
		}))

		// Le même session id ne crée jamais une seconde commande :
		// on retombe sur l'existante sans toucher aux metadata
		order, created, err := materializeOrder(&stripe.CheckoutSession{ID: "cs_test_123"}, primitive.NilObjectID)
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, existingID, order.ID)
		assert.Equal(mt, "cs_test_123", order.StripeID)
		assert.Equal(mt, userID, order.User)
	})

	mt.Run("course perdue sur l'index unique stripe_id", func(mt *mtest.T) {
		database.MongoDB = mt.DB

		existingID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		s := paidSession("cs_test_456", userID, primitive.NewObjectID())

		// 1. première lecture : rien, 2. insert refusé par l'index unique
		// (le webhook est passé avant nous), 3. relecture : la commande posée
		// par l'autre écrivain
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "vetra.orders", mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
			mtest.CreateCursorResponse(1, "vetra.orders", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: existingID},
				{Key: "user", Value: userID},
				{Key: "stripe_id", Value: "cs_test_456"},
				{Key: "status", Value: models.StatusPending},
			}),
		)

		order, created, err := materializeOrder(s, primitive.NilObjectID)
		require.NoError(mt, err)
		assert.False(mt, created)
		assert.Equal(mt, existingID, order.ID)
	})

	mt.Run("première matérialisation", func(mt *mtest.T) {
		database.MongoDB = mt.DB

		userID := primitive.NewObjectID()
		s := paidSession("cs_test_789", userID, primitive.NewObjectID())

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "vetra.orders", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		order, created, err := materializeOrder(s, primitive.NilObjectID)
		require.NoError(mt, err)
		assert.True(mt, created)
		assert.Equal(mt, "cs_test_789", order.StripeID)
		assert.Equal(mt, userID, order.User)
		assert.Equal(mt, models.StatusPending, order.Status)
		assert.True(mt, order.IsPaid)
		require.NotNil(mt, order.PaidAt)
	})
}

func TestOrderFromSessionFreezesLineItems(t *testing.T) {
	userID := primitive.NewObjectID()
	// Produit volontairement inexistant en base : les lignes viennent
	// uniquement des metadata, jamais du catalogue
	ghostProduct := primitive.NewObjectID()

	order, err := orderFromSession(paidSession("cs_test_abc", userID, ghostProduct), primitive.NilObjectID)
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1)
	item := order.OrderItems[0]
	assert.Equal(t, "Veste en laine", item.Name)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 199.99, item.Price)
	assert.Equal(t, "Vetra", item.Brand)
	assert.Equal(t, ghostProduct, item.Product)

	assert.Equal(t, 399.98, order.TotalPrice)
	assert.Equal(t, 50.0, order.ShippingPrice)
	assert.Equal(t, "Lyon", order.ShippingAddress.City)
	assert.Equal(t, userID, order.User)
}

func TestOrderFromSessionUnpaid(t *testing.T) {
	s := paidSession("cs_test_def", primitive.NewObjectID(), primitive.NewObjectID())
	s.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid

	order, err := orderFromSession(s, primitive.NilObjectID)
	require.NoError(t, err)
	assert.False(t, order.IsPaid)
	assert.Nil(t, order.PaidAt)
}

func TestOrderFromSessionFallbackUser(t *testing.T) {
	fallback := primitive.NewObjectID()
	s := paidSession("cs_test_ghi", primitive.NewObjectID(), primitive.NewObjectID())
	delete(s.Metadata, "user_id")

	order, err := orderFromSession(s, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, order.User)
}

func TestOrderFromSessionBadMetadata(t *testing.T) {
	s := paidSession("cs_test_jkl", primitive.NewObjectID(), primitive.NewObjectID())
	s.Metadata["orderItems"] = "pas du json"

	_, err := orderFromSession(s, primitive.NilObjectID)
	assert.Error(t, err)
}
