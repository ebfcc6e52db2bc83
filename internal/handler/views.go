package handler

import (
	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/service"
)

// PublicProfile is what one participant sees of the other.
type PublicProfile struct {
	UserID            string   `json:"user_id"`
	Username          string   `json:"username"`
	FullName          *string  `json:"full_name"`
	Location          *string  `json:"location"`
	ProfilePictureURL *string  `json:"profile_picture_url"`
	Role              string   `json:"role"`
	Bio               *string  `json:"bio,omitempty"`
	Rating            *float64 `json:"rating,omitempty"`
}

func toPublicProfile(u *model.User) *PublicProfile {
	if u == nil {
		return nil
	}
	p := &PublicProfile{
		UserID:            u.UserID,
		Username:          u.Username,
		FullName:          u.FullName,
		Location:          u.Location,
		ProfilePictureURL: u.ProfilePictureURL,
		Role:              string(u.Role),
	}
	if u.TailorDetails != nil {
		rating := u.TailorDetails.Rating
		p.Bio = u.TailorDetails.Bio
		p.Rating = &rating
	}
	return p
}

// CustomerProfile adds body measurements for the tailor working on the order.
type CustomerProfile struct {
	PublicProfile
	RightArmLength  *float64 `json:"right_arm_length"`
	ShoulderWidth   *float64 `json:"shoulder_width"`
	LeftArmLength   *float64 `json:"left_arm_length"`
	UpperBodyHeight *float64 `json:"upper_body_height"`
	HipWidth        *float64 `json:"hip_width"`
}

func toCustomerProfile(u *model.User) *CustomerProfile {
	if u == nil {
		return nil
	}
	return &CustomerProfile{
		PublicProfile:   *toPublicProfile(u),
		RightArmLength:  u.RightArmLength,
		ShoulderWidth:   u.ShoulderWidth,
		LeftArmLength:   u.LeftArmLength,
		UpperBodyHeight: u.UpperBodyHeight,
		HipWidth:        u.HipWidth,
	}
}

type OrderResponse struct {
	model.Order
	Customer interface{}    `json:"customer,omitempty"`
	Tailor   *PublicProfile `json:"tailor,omitempty"`
}

func toOrderListResponse(d service.OrderDetail) OrderResponse {
	r := OrderResponse{Order: d.Order, Tailor: toPublicProfile(d.Tailor)}
	if d.Customer != nil {
		r.Customer = toPublicProfile(d.Customer)
	}
	return r
}

func toOrderDetailResponse(d *service.OrderDetail) OrderResponse {
	r := OrderResponse{Order: d.Order, Tailor: toPublicProfile(d.Tailor)}
	if d.Customer != nil {
		r.Customer = toCustomerProfile(d.Customer)
	}
	return r
}

type ChatResponse struct {
	model.Chat
	Customer    *PublicProfile `json:"customer,omitempty"`
	Tailor      *PublicProfile `json:"tailor,omitempty"`
	LastMessage *model.Message `json:"last_message,omitempty"`
}

func toChatResponse(d *service.ChatDetail) ChatResponse {
	return ChatResponse{
		Chat:        d.Chat,
		Customer:    toPublicProfile(d.Customer),
		Tailor:      toPublicProfile(d.Tailor),
		LastMessage: d.LastMessage,
	}
}

type MessageResponse struct {
	model.Message
	Sender *PublicProfile `json:"sender,omitempty"`
}

func toMessageResponse(d *service.MessageDetail) MessageResponse {
	return MessageResponse{Message: d.Message, Sender: toPublicProfile(d.Sender)}
}

type DesignResponse struct {
	model.Design
	Tags []model.Tag `json:"tags"`
}

func toDesignResponse(d *service.DesignDetail) DesignResponse {
	tags := d.Tags
	if tags == nil {
		tags = []model.Tag{}
	}
	return DesignResponse{Design: d.Design, Tags: tags}
}
