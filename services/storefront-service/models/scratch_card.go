package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Reward string

const (
	RewardLanaiaTube        Reward = "lanaia_tube"
	RewardLanaiaPaquet      Reward = "lanaia_paquet"
	RewardLanaiaPoche       Reward = "lanaia_poche"
	RewardLivraisonGratuite Reward = "livraison_gratuite"
)

// Rewards lists every prize a scratch card can hold, each equally likely.
var Rewards = []Reward{
	RewardLanaiaTube,
	RewardLanaiaPaquet,
	RewardLanaiaPoche,
	RewardLivraisonGratuite,
}

var rewardLabels = map[Reward]string{
	RewardLanaiaTube:        "Tube Lanaïa Gratuit",
	RewardLanaiaPaquet:      "Paquet Lanaïa Gratuit",
	RewardLanaiaPoche:       "Paquet Lanaïa Poche Gratuit",
	RewardLivraisonGratuite: "Livraison Gratuite",
}

func (r Reward) Label() string {
	return rewardLabels[r]
}

type ScratchCard struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID  string             `bson:"customer_id" json:"customerId"`
	Reward      Reward             `bson:"reward" json:"reward"`
	RewardLabel string             `bson:"reward_label" json:"rewardLabel"`
	Scratched   bool               `bson:"scratched" json:"scratched"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	ScratchedAt *time.Time         `bson:"scratched_at,omitempty" json:"scratchedAt,omitempty"`
}

type ScratchResult struct {
	Success     bool   `json:"success"`
	Reward      Reward `json:"reward"`
	RewardLabel string `json:"rewardLabel"`
}
