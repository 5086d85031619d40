package mysql

const hotelColumns = "id, name, location, price, rating, rooms, amenities, description, image, status"

const insertHotelSQL = `
INSERT INTO hotels
  (` + hotelColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels SET
  name        = ?,
  location    = ?,
  price       = ?,
  rating      = ?,
  rooms       = ?,
  amenities   = ?,
  description = ?,
  image       = ?,
  status      = ?
WHERE id = ?
`

const upsertHotelSQL = insertHotelSQL + `
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  location    = VALUES(location),
  price       = VALUES(price),
  rating      = VALUES(rating),
  rooms       = VALUES(rooms),
  amenities   = VALUES(amenities),
  description = VALUES(description),
  image       = VALUES(image),
  status      = VALUES(status),
  updated_at  = CURRENT_TIMESTAMP
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const getHotelSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`

// Filtering happens in SQL; LIKE on a utf8mb4 general collation is already
// case-insensitive.
const listHotelsSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE (? OR status = 'active')
  AND (? = '' OR name LIKE CONCAT('%', ?, '%'))
  AND (? = '' OR location LIKE CONCAT('%', ?, '%'))
ORDER BY id
`

// Note: `comment` is reserved; keep it quoted everywhere.
const reviewColumns = "id, hotel_id, hotel_name, author, rating, `comment`, review_date, likes"

const insertReviewSQL = `
INSERT INTO reviews
  (` + reviewColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const upsertReviewSQL = insertReviewSQL + "ON DUPLICATE KEY UPDATE\n" +
	"  hotel_name  = VALUES(hotel_name),\n" +
	"  author      = VALUES(author),\n" +
	"  rating      = VALUES(rating),\n" +
	"  `comment`   = VALUES(`comment`),\n" +
	"  review_date = VALUES(review_date),\n" +
	"  likes       = GREATEST(likes, VALUES(likes))\n"

const likeReviewSQL = `UPDATE reviews SET likes = likes + 1 WHERE id = ?`

const reviewLikesSQL = `SELECT likes FROM reviews WHERE id = ?`

const getReviewSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`

// Newest first; ids are time-ordered so they break ties inside a day.
const listReviewsSQL = `
SELECT ` + reviewColumns + `
FROM reviews
WHERE (? IS NULL OR hotel_id = ?)
ORDER BY review_date DESC, id DESC
`

const reviewStatsSQL = `
SELECT rating, COUNT(*)
FROM reviews
WHERE hotel_id = ?
GROUP BY rating
`
