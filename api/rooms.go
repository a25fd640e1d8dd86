package api

import (
	"context"
	"net/http"
)

func (c *Client) ListRooms(ctx context.Context, q ListQuery) (Page[Room], error) {
	var page Page[Room]
	if err := c.do(ctx, newRequest(http.MethodGet, "/rooms", q.Values()), &page); err != nil {
		return Page[Room]{}, err
	}
	return page, nil
}

func (c *Client) GetRoom(ctx context.Context, id int64) (Room, error) {
	var room Room
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/rooms", id), nil), &room); err != nil {
		return Room{}, err
	}
	return room, nil
}

func (c *Client) CreateRoom(ctx context.Context, input RoomInput, image *File) (Room, error) {
	form, err := newMultipart().jsonPart("data", input).filePart("image", image).build()
	if err != nil {
		return Room{}, err
	}
	var room Room
	if err := c.do(ctx, newRequest(http.MethodPost, "/rooms", nil).withMultipart(form), &room); err != nil {
		return Room{}, err
	}
	return room, nil
}

func (c *Client) UpdateRoom(ctx context.Context, id int64, input RoomInput, image *File) (Room, error) {
	req, err := newRequest(http.MethodPut, idPath("/rooms", id), nil).withJSON(input)
	if err != nil {
		return Room{}, err
	}
	var room Room
	if err := c.do(ctx, req, &room); err != nil {
		return Room{}, err
	}
	if image == nil {
		return room, nil
	}
	form, err := newMultipart().filePart("image", image).build()
	if err != nil {
		return Room{}, err
	}
	if err := c.do(ctx, newRequest(http.MethodPost, idPath("/rooms", id, "image"), nil).withMultipart(form), &room); err != nil {
		return Room{}, err
	}
	return room, nil
}

func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, idPath("/rooms", id), nil), nil)
}

func (c *Client) ListMeterReadings(ctx context.Context, roomID int64) ([]MeterReading, error) {
	var readings []MeterReading
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/rooms", roomID, "meter-readings"), nil), &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

func (c *Client) RecordMeterReading(ctx context.Context, roomID int64, input MeterReadingInput, electricImage, waterImage *File) (MeterReading, error) {
	form, err := newMultipart().
		jsonPart("data", input).
		filePart("electricImage", electricImage).
		filePart("waterImage", waterImage).
		build()
	if err != nil {
		return MeterReading{}, err
	}
	var reading MeterReading
	if err := c.do(ctx, newRequest(http.MethodPost, idPath("/rooms", roomID, "meter-readings"), nil).withMultipart(form), &reading); err != nil {
		return MeterReading{}, err
	}
	return reading, nil
}
