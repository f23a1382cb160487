package http

// OpenAPISpec documents the public API surface
var OpenAPISpec = []byte(`openapi: 3.0.3
info:
  title: Postbridge API
  description: Compose one post and fan it out to connected social accounts through Publer.
  version: 1.0.0
servers:
  - url: /api/v1
paths:
  /publish:
    post:
      summary: Publish a post through the provider without storing a draft
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/PublishRequest'
      responses:
        '200':
          description: Raw provider response
        '400':
          description: No valid accounts or empty post
        '401':
          description: Provider rejected the API key
        '502':
          description: Provider-side failure (transport, media job)
  /accounts:
    get:
      summary: List connected social accounts with canonical network keys
      responses:
        '200':
          description: Account directory
  /posts:
    post:
      summary: Create a post draft, optionally scheduled or published immediately
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/CreatePostRequest'
      responses:
        '201':
          description: Created post
        '400':
          description: Validation error
    get:
      summary: List posts
      parameters:
        - name: status
          in: query
          schema:
            type: string
            enum: [draft, scheduled, published, failed]
        - name: account_id
          in: query
          schema:
            type: string
        - name: limit
          in: query
          schema:
            type: integer
        - name: offset
          in: query
          schema:
            type: integer
      responses:
        '200':
          description: Post list
  /posts/{id}:
    get:
      summary: Get a post
      parameters:
        - $ref: '#/components/parameters/PostID'
      responses:
        '200':
          description: Post
        '404':
          description: Not found
    put:
      summary: Update a post
      parameters:
        - $ref: '#/components/parameters/PostID'
      responses:
        '200':
          description: Updated post
        '409':
          description: Post is not editable
    delete:
      summary: Delete a post
      parameters:
        - $ref: '#/components/parameters/PostID'
      responses:
        '204':
          description: Deleted
  /posts/{id}/publish:
    post:
      summary: Hand a stored post to the provider immediately
      parameters:
        - $ref: '#/components/parameters/PostID'
      responses:
        '200':
          description: Published post
  /posts/{id}/schedule:
    post:
      summary: Schedule a post for a future time
      parameters:
        - $ref: '#/components/parameters/PostID'
      responses:
        '200':
          description: Scheduled post
  /posts/{id}/draft:
    post:
      summary: Clear scheduling and keep the post as draft
      parameters:
        - $ref: '#/components/parameters/PostID'
      responses:
        '200':
          description: Draft post
  /media/upload:
    post:
      summary: Upload a media file to storage, returning a public URL
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              properties:
                file:
                  type: string
                  format: binary
      responses:
        '201':
          description: Uploaded file
components:
  parameters:
    PostID:
      name: id
      in: path
      required: true
      schema:
        type: string
  schemas:
    PublishRequest:
      type: object
      required: [accounts, text]
      properties:
        accounts:
          type: array
          items:
            type: string
        text:
          type: string
        media:
          type: array
          items:
            type: string
            format: uri
        scheduled_at:
          type: string
          format: date-time
    CreatePostRequest:
      allOf:
        - $ref: '#/components/schemas/PublishRequest'
        - type: object
          properties:
            publish_now:
              type: boolean
`)
