package models

// Client is the buyer side of the marketplace. The core reads it only
// to deliver pushes; profile ownership lives elsewhere.
type Client struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}
